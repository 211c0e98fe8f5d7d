package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/socialfeed-backend/internal/http/response"
	"github.com/yungbote/socialfeed-backend/internal/platform/ctxutil"
	"github.com/yungbote/socialfeed-backend/internal/services"
)

type InteractionHandler struct {
	interactions services.InteractionService
}

func NewInteractionHandler(interactions services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// POST /api/posts/:id/interactions
// body: { "action": "like" | "dislike" | "unlike" | "undislike" | "save" | "unsave" | "comment" | "remove_comment" }
func (h *InteractionHandler) Record(c *gin.Context) {
	postID, err := parseUUID(c.Param("id"), "invalid_post_id")
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	action, err := services.ParseInteractionAction(req.Action)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	res, err := h.interactions.Record(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), postID, action)
	if err != nil {
		response.RespondServiceError(c, "record_interaction_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"interaction": res})
}
