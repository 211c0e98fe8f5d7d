package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

var errBoom = errors.New("boom")

func testLogger() *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		panic(err)
	}
	return log
}

// noShuffle keeps every slice in its input order.
type noShuffle struct{}

func (noShuffle) Shuffle(int, func(i, j int)) {}

// reverseShuffle reverses, so tests can observe that a shuffle happened.
type reverseShuffle struct{}

func (reverseShuffle) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

type fakePrefs struct {
	mu         sync.Mutex
	points     map[uuid.UUID]map[uuid.UUID]int
	names      map[uuid.UUID]string
	topErr     error
	pointsErr  map[uuid.UUID]error
	topCalls   int
	initCalled []uuid.UUID
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{
		points:    map[uuid.UUID]map[uuid.UUID]int{},
		names:     map[uuid.UUID]string{},
		pointsErr: map[uuid.UUID]error{},
	}
}

func (f *fakePrefs) set(user, cat uuid.UUID, points int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.points[user] == nil {
		f.points[user] = map[uuid.UUID]int{}
	}
	f.points[user][cat] = points
}

func (f *fakePrefs) InitUserPreferences(_ dbctx.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalled = append(f.initCalled, userID)
	return nil
}

func (f *fakePrefs) AddPoints(_ dbctx.Context, userID, categoryID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.points[userID] == nil {
		f.points[userID] = map[uuid.UUID]int{}
	}
	f.points[userID][categoryID] += delta
	return nil
}

func (f *fakePrefs) GetPointsMap(_ dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.pointsErr[userID]; err != nil {
		return nil, err
	}
	out := map[uuid.UUID]int{}
	for k, v := range f.points[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakePrefs) GetTopCategoriesWithPoints(_ dbctx.Context, userID uuid.UUID, limit int) ([]types.CategoryPoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topCalls++
	if f.topErr != nil {
		return nil, f.topErr
	}
	var rows []types.CategoryPoints
	for cat, p := range f.points[userID] {
		rows = append(rows, types.CategoryPoints{CategoryID: cat, Points: p})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return f.names[rows[i].CategoryID] < f.names[rows[j].CategoryID]
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakePrefs) GetTopCategories(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.Category, error) {
	rows, err := f.GetTopCategoriesWithPoints(dbctx.Context{}, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, &types.Category{ID: r.CategoryID, Name: f.names[r.CategoryID]})
	}
	return out, nil
}

func (f *fakePrefs) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Category, error) {
	var out []*types.Category
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out = append(out, &types.Category{ID: id, Name: name})
		}
	}
	return out, nil
}

type fakeInteractions struct {
	recent  map[uuid.UUID][]*types.CreatorPost
	touched map[uuid.UUID][]uuid.UUID
	err     error
}

func newFakeInteractions() *fakeInteractions {
	return &fakeInteractions{
		recent:  map[uuid.UUID][]*types.CreatorPost{},
		touched: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeInteractions) Touch(_ dbctx.Context, userID, postID uuid.UUID) error {
	f.touched[userID] = append(f.touched[userID], postID)
	return nil
}

func (f *fakeInteractions) GetRecentInteractedPosts(_ dbctx.Context, userID uuid.UUID, _ int) ([]*types.CreatorPost, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]*types.CreatorPost(nil), f.recent[userID]...), nil
}

// fakePosts filters an in-memory corpus. With ignoreExclusions set it
// returns excluded posts anyway, like a stale or careless repository.
type fakePosts struct {
	mu               sync.Mutex
	all              []*types.CreatorPost
	ignoreExclusions bool
	failCategory     map[uuid.UUID]bool
	batchCalls       int
	sourceCalls      int
}

func newFakePosts(posts ...*types.CreatorPost) *fakePosts {
	return &fakePosts{all: posts, failCategory: map[uuid.UUID]bool{}}
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (f *fakePosts) Get(_ dbctx.Context, postID uuid.UUID) (*types.CreatorPost, error) {
	for _, p := range f.all {
		if p.ID == postID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePosts) GetPostsByUsersInCategory(_ dbctx.Context, userIDs []uuid.UUID, categoryID uuid.UUID, excludeIDs []uuid.UUID, limit int, before time.Time) ([]*types.CreatorPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sourceCalls++
	if f.failCategory[categoryID] {
		return nil, errBoom
	}
	var out []*types.CreatorPost
	for _, p := range f.all {
		if p.CategoryID == nil || *p.CategoryID != categoryID || !contains(userIDs, p.UserID) {
			continue
		}
		if !p.CreatedAt.Before(before) {
			continue
		}
		if !f.ignoreExclusions && contains(excludeIDs, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePosts) GetTrendingPostsInCategory(_ dbctx.Context, categoryID uuid.UUID, excludeUserIDs, excludePostIDs []uuid.UUID, limit int, _ int) ([]*types.CreatorPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCategory[categoryID] {
		return nil, errBoom
	}
	var out []*types.CreatorPost
	for _, p := range f.all {
		if p.CategoryID == nil || *p.CategoryID != categoryID || contains(excludeUserIDs, p.UserID) {
			continue
		}
		if !f.ignoreExclusions && contains(excludePostIDs, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LikeCount+out[i].DislikeCount > out[j].LikeCount+out[j].DislikeCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePosts) UpdateLikeCounts(_ dbctx.Context, postID uuid.UUID, likeDelta, dislikeDelta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.all {
		if p.ID == postID {
			p.LikeCount += likeDelta
			p.DislikeCount += dislikeDelta
		}
	}
	return nil
}

func (f *fakePosts) BatchGet(_ dbctx.Context, ids []uuid.UUID) ([]*types.CreatorPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	var out []*types.CreatorPost
	for _, id := range ids {
		for _, p := range f.all {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type fakePersonalPosts struct {
	all []*types.PersonalPost
}

func (f *fakePersonalPosts) GetPostsByUsers(_ dbctx.Context, userIDs []uuid.UUID, before time.Time, limit int) ([]*types.PersonalPost, error) {
	var out []*types.PersonalPost
	for _, p := range f.all {
		if contains(userIDs, p.UserID) && p.CreatedAt.Before(before) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSocial struct {
	following   map[uuid.UUID][]uuid.UUID
	friends     map[uuid.UUID][]uuid.UUID
	requests    map[uuid.UUID][]uuid.UUID // from -> to
	skips       map[uuid.UUID]map[uuid.UUID]*time.Time
	followCalls int
	err         error
	// When set, GetFollowingIDs signals entered, waits for release, then
	// reports ctx.Err().
	entered chan struct{}
	release chan struct{}
}

func newFakeSocial() *fakeSocial {
	return &fakeSocial{
		following: map[uuid.UUID][]uuid.UUID{},
		friends:   map[uuid.UUID][]uuid.UUID{},
		requests:  map[uuid.UUID][]uuid.UUID{},
		skips:     map[uuid.UUID]map[uuid.UUID]*time.Time{},
	}
}

func (f *fakeSocial) befriend(a, b uuid.UUID) {
	f.friends[a] = append(f.friends[a], b)
	f.friends[b] = append(f.friends[b], a)
}

func (f *fakeSocial) GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	f.followCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.release != nil {
		close(f.entered)
		<-f.release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return f.following[userID], nil
}

func (f *fakeSocial) GetFriendIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.friends[userID], nil
}

func (f *fakeSocial) GetRequestsTo(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for from, tos := range f.requests {
		if contains(tos, userID) {
			out = append(out, from)
		}
	}
	return out, nil
}

func (f *fakeSocial) GetRequestsFrom(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.requests[userID], nil
}

func (f *fakeSocial) GetSkippedIDs(_ context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, exp := range f.skips[userID] {
		if exp == nil || exp.After(now) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeSocial) IsFollowing(_ context.Context, userID, otherID uuid.UUID) (bool, error) {
	return contains(f.following[userID], otherID), nil
}

func (f *fakeSocial) GetFriendStatus(_ context.Context, userID, otherID uuid.UUID) (types.FriendStatus, error) {
	switch {
	case contains(f.friends[userID], otherID):
		return types.FriendStatusFriends, nil
	case contains(f.requests[userID], otherID):
		return types.FriendStatusPendingOutgoing, nil
	case contains(f.requests[otherID], userID):
		return types.FriendStatusPendingIncoming, nil
	}
	return types.FriendStatusNotFriends, nil
}

func (f *fakeSocial) SkipSuggestion(_ context.Context, userID, targetID uuid.UUID, expiresAt *time.Time) error {
	if f.skips[userID] == nil {
		f.skips[userID] = map[uuid.UUID]*time.Time{}
	}
	f.skips[userID][targetID] = expiresAt
	return nil
}

type fakeReactions struct {
	reactions map[uuid.UUID]types.Reaction
	saved     map[uuid.UUID]bool
	calls     []string
}

func newFakeReactions() *fakeReactions {
	return &fakeReactions{reactions: map[uuid.UUID]types.Reaction{}, saved: map[uuid.UUID]bool{}}
}

func (f *fakeReactions) GetUserReactions(_ dbctx.Context, _ uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]types.Reaction, error) {
	out := map[uuid.UUID]types.Reaction{}
	for _, id := range postIDs {
		if r, ok := f.reactions[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeReactions) GetUserSavedPostIDs(_ dbctx.Context, _ uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range postIDs {
		if f.saved[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeReactions) SetReaction(_ dbctx.Context, _, postID uuid.UUID, isDislike bool) (types.Reaction, error) {
	f.calls = append(f.calls, "set")
	prior, ok := f.reactions[postID]
	if !ok {
		prior = types.ReactionNone
	}
	if isDislike {
		f.reactions[postID] = types.ReactionDislike
	} else {
		f.reactions[postID] = types.ReactionLike
	}
	return prior, nil
}

func (f *fakeReactions) ClearReaction(_ dbctx.Context, _, postID uuid.UUID) (types.Reaction, error) {
	f.calls = append(f.calls, "clear")
	prior, ok := f.reactions[postID]
	if !ok {
		return types.ReactionNone, nil
	}
	delete(f.reactions, postID)
	return prior, nil
}

func (f *fakeReactions) Save(_ dbctx.Context, _, postID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, "save")
	changed := !f.saved[postID]
	f.saved[postID] = true
	return changed, nil
}

func (f *fakeReactions) Unsave(_ dbctx.Context, _, postID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, "unsave")
	changed := f.saved[postID]
	delete(f.saved, postID)
	return changed, nil
}

type fakeUsers struct {
	users map[uuid.UUID]*types.User
}

func (f *fakeUsers) GetByID(_ dbctx.Context, id uuid.UUID) (*types.User, error) {
	return f.users[id], nil
}

func (f *fakeUsers) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// failingBackend errors on every call, like an unreachable redis.
type failingBackend struct{}

func (failingBackend) GetBytes(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBoom
}
func (failingBackend) SetBytes(context.Context, string, []byte, time.Duration) error { return errBoom }
func (failingBackend) DeletePrefix(context.Context, string) error                    { return errBoom }

func post(author uuid.UUID, cat *uuid.UUID, createdAt time.Time, likes int) *types.CreatorPost {
	return &types.CreatorPost{ID: uuid.New(), UserID: author, CategoryID: cat, CreatedAt: createdAt, LikeCount: likes}
}

func feedIDs(fps []types.FeedPost) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(fps))
	for _, fp := range fps {
		out = append(out, fp.Post.GetID())
	}
	return out
}
