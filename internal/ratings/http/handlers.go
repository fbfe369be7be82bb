package http

import (
	"net/http"
	"strconv"

	"github.com/cha-ryne/ratings-sync/internal/ratings/session"
	"github.com/cha-ryne/ratings-sync/internal/ratings/store"
	"github.com/gin-gonic/gin"
)

// Handler exposes the ratings store and interaction session over HTTP.
type Handler struct {
	store   *store.Store
	session *session.Session
}

// New creates a Handler over the given store and session.
func New(st *store.Store, sess *session.Session) *Handler {
	return &Handler{store: st, session: sess}
}

func (h *Handler) summary(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, summaryResp{
		OK:          true,
		ProjectID:   projectID,
		Average:     h.store.Average(projectID),
		Count:       h.store.Count(projectID),
		TopComments: h.store.TopComments(projectID, 0),
	})
}

func (h *Handler) comments(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": h.store.CommentsWithText(projectID)})
}

func (h *Handler) submit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	result := h.store.Submit(c.Request.Context(), store.Selection{
		ProjectID: req.ProjectID,
		Stars:     req.Stars,
		Comment:   req.Comment,
	})
	if !result.Success {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": result.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "local_only": result.LocalOnly})
}

func (h *Handler) reload(c *gin.Context) {
	if err := h.store.Load(c.Request.Context()); err != nil {
		// Prior good data is preserved; the caller gets the same
		// message the UI would show.
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": h.store.LastError()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) openRating(c *gin.Context) {
	var req openRatingReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	h.session.OpenRatingModal(req.ProjectID, req.Stars)
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": h.session.Snapshot()})
}

func (h *Handler) draft(c *gin.Context) {
	var req draftReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if req.Stars != nil {
		h.session.SelectStars(*req.Stars)
	}
	if req.Comment != nil {
		h.session.SetComment(*req.Comment)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": h.session.Snapshot()})
}

func (h *Handler) submitSession(c *gin.Context) {
	result := h.session.Submit(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": result.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "local_only": result.LocalOnly})
}

func (h *Handler) closeRating(c *gin.Context) {
	h.session.CloseRatingModal()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) openComments(c *gin.Context) {
	var req openCommentsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	h.session.ShowAllComments(req.ProjectID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": h.session.AllComments()})
}

func (h *Handler) closeComments(c *gin.Context) {
	h.session.CloseCommentsModal()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func projectIDParam(c *gin.Context) (int, bool) {
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil || projectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid project id"})
		return 0, false
	}
	return projectID, true
}
