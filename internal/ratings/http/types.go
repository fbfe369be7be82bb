package http

import "github.com/cha-ryne/ratings-sync/internal/ratings/domain"

type submitReq struct {
	ProjectID int    `json:"project_id"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment"`
}

type openRatingReq struct {
	ProjectID int `json:"project_id"`
	Stars     int `json:"stars"`
}

type draftReq struct {
	Stars   *int    `json:"stars"`
	Comment *string `json:"comment"`
}

type openCommentsReq struct {
	ProjectID int `json:"project_id"`
}

type summaryResp struct {
	OK          bool            `json:"ok"`
	ProjectID   int             `json:"project_id"`
	Average     int             `json:"average"`
	Count       int             `json:"count"`
	TopComments []domain.Rating `json:"top_comments"`
}
