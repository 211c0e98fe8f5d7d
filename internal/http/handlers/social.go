package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/http/response"
	"github.com/yungbote/socialfeed-backend/internal/platform/ctxutil"
	"github.com/yungbote/socialfeed-backend/internal/services"
)

const (
	defaultSuggestionLimit = 20
	maxSuggestionLimit     = 50
	maxSkipDays            = 365
)

type SocialHandler struct {
	recs services.RecommendationService
}

func NewSocialHandler(recs services.RecommendationService) *SocialHandler {
	return &SocialHandler{recs: recs}
}

// GET /api/social/suggestions?limit
func (h *SocialHandler) GetSuggestions(c *gin.Context) {
	limit, err := queryLimit(c, defaultSuggestionLimit, maxSuggestionLimit)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	if limit == 0 {
		response.RespondOK(c, gin.H{"users": []types.SocialUser{}})
		return
	}
	users, err := h.recs.GetFriendSuggestions(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), limit)
	if err != nil {
		response.RespondServiceError(c, "suggestions_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// POST /api/social/suggestions/:id/skip
// body (optional): { "ttl_days": 30 }; omitted or 0 skips for good.
func (h *SocialHandler) SkipSuggestion(c *gin.Context) {
	targetID, err := parseUUID(c.Param("id"), "invalid_user_id")
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	var req struct {
		TTLDays int `json:"ttl_days"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	days := min(max(req.TTLDays, 0), maxSkipDays)
	ttl := time.Duration(days) * 24 * time.Hour
	if err := h.recs.SkipSuggestion(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), targetID, ttl); err != nil {
		response.RespondServiceError(c, "skip_suggestion_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/social/users/:id
func (h *SocialHandler) GetSocialUser(c *gin.Context) {
	otherID, err := parseUUID(c.Param("id"), "invalid_user_id")
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	su, err := h.recs.GetSocialUser(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), otherID)
	if err != nil {
		response.RespondServiceError(c, "social_user_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"user": su})
}

// GET /api/social/users/:id/match
func (h *SocialHandler) GetMatch(c *gin.Context) {
	otherID, err := parseUUID(c.Param("id"), "invalid_user_id")
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	viewer := ctxutil.ViewerID(ctx)
	rate, err := h.recs.CalculateMatchRate(ctx, viewer, otherID)
	if err != nil {
		response.RespondServiceError(c, "match_rate_failed", err)
		return
	}
	overlap, err := h.recs.OverlapCategories(ctx, viewer, otherID)
	if err != nil {
		response.RespondServiceError(c, "overlap_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"match_rate": rate, "overlap_categories": overlap})
}
