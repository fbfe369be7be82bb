package http

import "github.com/gin-gonic/gin"

// Register attaches ratings and session routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	ratings := rg.Group("/ratings")
	ratings.GET("/summary/:project_id", h.summary)
	ratings.GET("/comments/:project_id", h.comments)
	ratings.POST("", h.submit)
	ratings.POST("/reload", h.reload)

	sess := rg.Group("/session")
	sess.POST("/rating/open", h.openRating)
	sess.POST("/rating/draft", h.draft)
	sess.POST("/rating/submit", h.submitSession)
	sess.POST("/rating/close", h.closeRating)
	sess.POST("/comments/open", h.openComments)
	sess.POST("/comments/close", h.closeComments)
}
