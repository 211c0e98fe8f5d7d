package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/http/response"
	"github.com/yungbote/socialfeed-backend/internal/platform/ctxutil"
	"github.com/yungbote/socialfeed-backend/internal/services"
)

const (
	maxFeedLimit           = 50
	defaultCreatorLimit    = 30
	defaultByCategoryLimit = 20
	defaultPersonalLimit   = 15
	defaultTopCategories   = 7
	maxTopCategories       = 25
)

type FeedHandler struct {
	feed services.FeedService
}

func NewFeedHandler(feed services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

type feedPage struct {
	Posts      []types.FeedPost `json:"posts"`
	NextBefore *time.Time       `json:"next_before,omitempty"`
}

// newFeedPage sets the next cursor to the oldest post on the page.
func newFeedPage(posts []types.FeedPost) feedPage {
	page := feedPage{Posts: posts}
	for _, p := range posts {
		ts := p.Post.GetCreatedAt()
		if page.NextBefore == nil || ts.Before(*page.NextBefore) {
			page.NextBefore = &ts
		}
	}
	return page
}

// GET /api/feed/creator?before&limit&top_k
func (h *FeedHandler) GetCreatorFeed(c *gin.Context) {
	limit, err := queryLimit(c, defaultCreatorLimit, maxFeedLimit)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	before, err := queryBefore(c)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	topK, err := queryBounded(c, "top_k", 0, maxTopCategories)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	if limit == 0 {
		response.RespondOK(c, newFeedPage([]types.FeedPost{}))
		return
	}
	posts, err := h.feed.GetCreatorFeed(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), before, limit, topK)
	if err != nil {
		response.RespondServiceError(c, "creator_feed_failed", err)
		return
	}
	response.RespondOK(c, newFeedPage(posts))
}

// GET /api/feed/creator/by-category?category_id&before&limit
func (h *FeedHandler) GetCreatorFeedByCategory(c *gin.Context) {
	categoryID, err := parseUUID(c.Query("category_id"), "invalid_category_id")
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	limit, err := queryLimit(c, defaultByCategoryLimit, maxFeedLimit)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	before, err := queryBefore(c)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	if limit == 0 {
		response.RespondOK(c, newFeedPage([]types.FeedPost{}))
		return
	}
	posts, err := h.feed.GetCreatorFeedByCategory(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), categoryID, before, limit)
	if err != nil {
		response.RespondServiceError(c, "category_feed_failed", err)
		return
	}
	response.RespondOK(c, newFeedPage(posts))
}

// GET /api/feed/personal?before&limit
func (h *FeedHandler) GetPersonalFeed(c *gin.Context) {
	limit, err := queryLimit(c, defaultPersonalLimit, maxFeedLimit)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	before, err := queryBefore(c)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	if limit == 0 {
		response.RespondOK(c, newFeedPage([]types.FeedPost{}))
		return
	}
	posts, err := h.feed.GetPersonalFeed(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), before, limit)
	if err != nil {
		response.RespondServiceError(c, "personal_feed_failed", err)
		return
	}
	response.RespondOK(c, newFeedPage(posts))
}

// GET /api/feed/top-categories?limit
func (h *FeedHandler) GetTopCategories(c *gin.Context) {
	limit, err := queryLimit(c, defaultTopCategories, maxTopCategories)
	if err != nil {
		response.RespondServiceError(c, "invalid_request", err)
		return
	}
	if limit == 0 {
		response.RespondOK(c, gin.H{"categories": []*types.Category{}})
		return
	}
	cats, err := h.feed.GetTopCategories(c.Request.Context(), ctxutil.ViewerID(c.Request.Context()), limit)
	if err != nil {
		response.RespondServiceError(c, "top_categories_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"categories": cats})
}

// POST /api/feed/preferences/init
func (h *FeedHandler) InitPreferences(c *gin.Context) {
	viewer := ctxutil.ViewerID(c.Request.Context())
	if viewer == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if err := h.feed.InitPreferences(c.Request.Context(), viewer); err != nil {
		response.RespondServiceError(c, "init_preferences_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
