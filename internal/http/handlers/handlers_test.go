package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
	"github.com/yungbote/socialfeed-backend/internal/platform/ctxutil"
	"github.com/yungbote/socialfeed-backend/internal/services"
)

type fakeFeed struct {
	gotLimit  int
	gotTopK   int
	gotBefore time.Time
	gotCat    uuid.UUID
	posts     []types.FeedPost
	err       error
}

func (f *fakeFeed) InitPreferences(context.Context, uuid.UUID) error { return f.err }

func (f *fakeFeed) GetTopCategories(_ context.Context, _ uuid.UUID, limit int) ([]*types.Category, error) {
	f.gotLimit = limit
	return []*types.Category{{ID: uuid.New(), Name: "sports"}}, f.err
}

func (f *fakeFeed) GetPersonalFeed(_ context.Context, _ uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error) {
	f.gotBefore, f.gotLimit = before, limit
	return f.posts, f.err
}

func (f *fakeFeed) MixCategoryFeed(_ context.Context, _, cat uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error) {
	f.gotCat, f.gotBefore, f.gotLimit = cat, before, limit
	return f.posts, f.err
}

func (f *fakeFeed) GetCreatorFeedByCategory(_ context.Context, _, cat uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error) {
	f.gotCat, f.gotBefore, f.gotLimit = cat, before, limit
	return f.posts, f.err
}

func (f *fakeFeed) GetCreatorFeed(_ context.Context, _ uuid.UUID, before time.Time, limit, topK int) ([]types.FeedPost, error) {
	f.gotBefore, f.gotLimit, f.gotTopK = before, limit, topK
	return f.posts, f.err
}

type fakeRecs struct {
	gotViewer uuid.UUID
	gotTTL    time.Duration
	err       error
}

func (f *fakeRecs) CalculateMatchRate(_ context.Context, viewer, _ uuid.UUID) (int, error) {
	f.gotViewer = viewer
	return 87, f.err
}

func (f *fakeRecs) OverlapCategories(context.Context, uuid.UUID, uuid.UUID) ([]string, error) {
	return []string{"cinema"}, f.err
}

func (f *fakeRecs) GetFriendSuggestions(_ context.Context, viewer uuid.UUID, limit int) ([]types.SocialUser, error) {
	f.gotViewer = viewer
	out := make([]types.SocialUser, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, types.SocialUser{User: &types.User{ID: uuid.New()}})
	}
	return out, f.err
}

func (f *fakeRecs) GetSocialUser(_ context.Context, _, other uuid.UUID) (*types.SocialUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.SocialUser{User: &types.User{ID: other}, FriendStatus: types.FriendStatusFriends}, nil
}

func (f *fakeRecs) SkipSuggestion(_ context.Context, _, _ uuid.UUID, ttl time.Duration) error {
	f.gotTTL = ttl
	return f.err
}

type fakeInteractions struct {
	got services.InteractionAction
	err error
}

func (f *fakeInteractions) Record(_ context.Context, _, postID uuid.UUID, action services.InteractionAction) (*services.InteractionResult, error) {
	f.got = action
	if f.err != nil {
		return nil, f.err
	}
	return &services.InteractionResult{PostID: postID, Action: action, Delta: 2}, nil
}

func newTestRouter(viewer uuid.UUID, feed services.FeedService, recs services.RecommendationService, inter services.InteractionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: viewer})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	fh := NewFeedHandler(feed)
	sh := NewSocialHandler(recs)
	ih := NewInteractionHandler(inter)
	r.GET("/api/feed/creator", fh.GetCreatorFeed)
	r.GET("/api/feed/creator/by-category", fh.GetCreatorFeedByCategory)
	r.GET("/api/feed/personal", fh.GetPersonalFeed)
	r.GET("/api/feed/top-categories", fh.GetTopCategories)
	r.GET("/api/social/suggestions", sh.GetSuggestions)
	r.POST("/api/social/suggestions/:id/skip", sh.SkipSuggestion)
	r.GET("/api/social/users/:id", sh.GetSocialUser)
	r.GET("/api/social/users/:id/match", sh.GetMatch)
	r.POST("/api/posts/:id/interactions", ih.Record)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreatorFeedQueryParsing(t *testing.T) {
	feed := &fakeFeed{}
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	feed.posts = []types.FeedPost{
		{Kind: types.PostKindCreator, Post: &types.CreatorPost{ID: uuid.New(), CreatedAt: created.Add(time.Hour)}, Reaction: types.ReactionNone},
		{Kind: types.PostKindCreator, Post: &types.CreatorPost{ID: uuid.New(), CreatedAt: created}, Reaction: types.ReactionLike},
	}
	r := newTestRouter(uuid.New(), feed, &fakeRecs{}, &fakeInteractions{})

	rec := do(r, http.MethodGet, "/api/feed/creator", "")
	if rec.Code != http.StatusOK || feed.gotLimit != 30 || feed.gotTopK != 0 {
		t.Fatalf("defaults: status=%d limit=%d topk=%d", rec.Code, feed.gotLimit, feed.gotTopK)
	}
	var page struct {
		Posts      []json.RawMessage `json:"posts"`
		NextBefore time.Time         `json:"next_before"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Posts) != 2 || !page.NextBefore.Equal(created) {
		t.Fatalf("unexpected page: %d posts, next_before %v", len(page.Posts), page.NextBefore)
	}

	rec = do(r, http.MethodGet, "/api/feed/creator?limit=500&top_k=3&before=2026-05-01T10:00:00Z", "")
	if rec.Code != http.StatusOK || feed.gotLimit != 50 || feed.gotTopK != 3 || !feed.gotBefore.Equal(created) {
		t.Fatalf("explicit: status=%d limit=%d topk=%d before=%v", rec.Code, feed.gotLimit, feed.gotTopK, feed.gotBefore)
	}

	for _, q := range []string{"?limit=abc", "?before=yesterday", "?top_k=x"} {
		if rec := do(r, http.MethodGet, "/api/feed/creator"+q, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestFeedErrorsMapToStatus(t *testing.T) {
	feed := &fakeFeed{err: errors.New("db down")}
	r := newTestRouter(uuid.New(), feed, &fakeRecs{}, &fakeInteractions{})
	if rec := do(r, http.MethodGet, "/api/feed/personal", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if feed.gotLimit != 15 {
		t.Fatalf("expected personal default limit 15, got %d", feed.gotLimit)
	}
}

func TestCategoryFeedRequiresCategory(t *testing.T) {
	feed := &fakeFeed{}
	r := newTestRouter(uuid.New(), feed, &fakeRecs{}, &fakeInteractions{})
	if rec := do(r, http.MethodGet, "/api/feed/creator/by-category", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without category, got %d", rec.Code)
	}
	cat := uuid.New()
	rec := do(r, http.MethodGet, "/api/feed/creator/by-category?category_id="+cat.String(), "")
	if rec.Code != http.StatusOK || feed.gotCat != cat || feed.gotLimit != 20 {
		t.Fatalf("status=%d cat=%s limit=%d", rec.Code, feed.gotCat, feed.gotLimit)
	}
}

func TestTopCategoriesDefaultLimit(t *testing.T) {
	feed := &fakeFeed{}
	r := newTestRouter(uuid.New(), feed, &fakeRecs{}, &fakeInteractions{})
	if rec := do(r, http.MethodGet, "/api/feed/top-categories", ""); rec.Code != http.StatusOK || feed.gotLimit != 7 {
		t.Fatalf("status=%d limit=%d", rec.Code, feed.gotLimit)
	}
}

func TestSocialEndpoints(t *testing.T) {
	viewer := uuid.New()
	recs := &fakeRecs{}
	r := newTestRouter(viewer, &fakeFeed{}, recs, &fakeInteractions{})

	rec := do(r, http.MethodGet, "/api/social/suggestions?limit=3", "")
	var body struct {
		Users []types.SocialUser `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Users) != 3 || recs.gotViewer != viewer {
		t.Fatalf("suggestions: status=%d users=%d err=%v", rec.Code, len(body.Users), err)
	}

	other := uuid.New()
	rec = do(r, http.MethodGet, "/api/social/users/"+other.String()+"/match", "")
	var match struct {
		MatchRate int      `json:"match_rate"`
		Overlap   []string `json:"overlap_categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &match); err != nil || match.MatchRate != 87 || len(match.Overlap) != 1 {
		t.Fatalf("match: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodPost, "/api/social/suggestions/"+other.String()+"/skip", `{"ttl_days": 30}`)
	if rec.Code != http.StatusOK || recs.gotTTL != 30*24*time.Hour {
		t.Fatalf("skip: status=%d ttl=%v", rec.Code, recs.gotTTL)
	}
	rec = do(r, http.MethodPost, "/api/social/suggestions/"+other.String()+"/skip", "")
	if rec.Code != http.StatusOK || recs.gotTTL != 0 {
		t.Fatalf("permanent skip: status=%d ttl=%v", rec.Code, recs.gotTTL)
	}
	if rec := do(r, http.MethodPost, "/api/social/suggestions/nope/skip", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	recs.err = fmt.Errorf("user: %w", apperr.ErrNotFound)
	if rec := do(r, http.MethodGet, "/api/social/users/"+other.String(), ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRecordInteraction(t *testing.T) {
	inter := &fakeInteractions{}
	r := newTestRouter(uuid.New(), &fakeFeed{}, &fakeRecs{}, inter)
	postID := uuid.New()
	path := "/api/posts/" + postID.String() + "/interactions"

	rec := do(r, http.MethodPost, path, `{"action":"Save"}`)
	if rec.Code != http.StatusOK || inter.got != services.ActionSave {
		t.Fatalf("save: status=%d action=%s", rec.Code, inter.got)
	}
	if rec := do(r, http.MethodPost, path, `{"action":"share"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}
	if rec := do(r, http.MethodPost, path, `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing action, got %d", rec.Code)
	}
	inter.err = fmt.Errorf("post: %w", apperr.ErrNotFound)
	if rec := do(r, http.MethodPost, path, `{"action":"like"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReadyReportsFailingProbe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Probe{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/readyz", h.Ready)
	if rec := do(r, http.MethodGet, "/healthcheck", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthcheck, got %d", rec.Code)
	}
	if rec := do(r, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from readyz, got %d", rec.Code)
	}
}

func TestNonPositiveLimitReturnsEmptyPage(t *testing.T) {
	feed := &fakeFeed{posts: []types.FeedPost{
		{Kind: types.PostKindCreator, Post: &types.CreatorPost{ID: uuid.New(), CreatedAt: time.Now()}},
	}}
	r := newTestRouter(uuid.New(), feed, &fakeRecs{}, &fakeInteractions{})
	cat := uuid.New()

	paths := []string{
		"/api/feed/creator?limit=0",
		"/api/feed/creator?limit=-5",
		"/api/feed/creator/by-category?limit=0&category_id=" + cat.String(),
		"/api/feed/personal?limit=-1",
	}
	for _, path := range paths {
		feed.gotLimit = -1
		rec := do(r, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		var page struct {
			Posts      []json.RawMessage `json:"posts"`
			NextBefore *time.Time        `json:"next_before"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
		if page.Posts == nil || len(page.Posts) != 0 || page.NextBefore != nil {
			t.Fatalf("%s: expected empty page, got %s", path, rec.Body.String())
		}
		if feed.gotLimit != -1 {
			t.Fatalf("%s: feed service should not be called, got limit %d", path, feed.gotLimit)
		}
	}

	rec := do(r, http.MethodGet, "/api/feed/top-categories?limit=0", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"categories":[]`) {
		t.Fatalf("top categories: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodGet, "/api/social/suggestions?limit=-2", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"users":[]`) {
		t.Fatalf("suggestions: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNonPositiveTopKFallsBackToDefault(t *testing.T) {
	feed := &fakeFeed{}
	r := newTestRouter(uuid.New(), feed, &fakeRecs{}, &fakeInteractions{})
	feed.gotTopK = -1
	if rec := do(r, http.MethodGet, "/api/feed/creator?top_k=0", ""); rec.Code != http.StatusOK || feed.gotTopK != 0 {
		t.Fatalf("status=%d topk=%d", rec.Code, feed.gotTopK)
	}
}
