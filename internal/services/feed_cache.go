package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/socialfeed-backend/internal/cache"
	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
)

// Cache failures never fail a feed: reads degrade to a miss and writes are
// dropped. Both are logged at debug and counted.

func (s *feedService) cacheGet(ctx context.Context, c cache.Cache, kind, key string, dst any) bool {
	ok, err := c.Get(ctx, key, dst)
	switch {
	case err != nil:
		s.log.Debug("cache get failed, treating as miss", "kind", kind, "key", key, "error", err)
		s.metrics.CacheOp(kind, "get", "error")
		return false
	case ok:
		s.metrics.CacheOp(kind, "get", "hit")
	default:
		s.metrics.CacheOp(kind, "get", "miss")
	}
	return ok
}

func (s *feedService) cacheSet(ctx context.Context, c cache.Cache, kind, key string, value any, ttl time.Duration) {
	if err := c.Set(ctx, key, value, ttl); err != nil {
		s.log.Debug("cache set failed, dropping", "kind", kind, "key", key, "error", err)
		s.metrics.CacheOp(kind, "set", "error")
		return
	}
	s.metrics.CacheOp(kind, "set", "ok")
}

func (s *feedService) cachePostObjects(ctx context.Context, posts []*types.CreatorPost) {
	for _, p := range posts {
		s.cacheSet(ctx, s.cache, "post_obj", cache.PostObjectKey(p.ID), p, s.cfg.PostObjectTTL)
	}
}

func (s *feedService) followIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	uc := s.cache.User(userID)
	key := cache.FollowIDsKey(userID)
	var ids []uuid.UUID
	if s.cacheGet(ctx, uc, "follow_ids", key, &ids) {
		return ids, nil
	}
	ids, err := s.social.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("following ids: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	s.cacheSet(ctx, uc, "follow_ids", key, ids, s.cfg.FollowIDsTTL)
	return ids, nil
}

func (s *feedService) topCategoriesWithPoints(ctx context.Context, userID uuid.UUID, k int) ([]types.CategoryPoints, error) {
	uc := s.cache.User(userID)
	key := cache.TopCategoriesKey(userID, k)
	var rows []types.CategoryPoints
	if s.cacheGet(ctx, uc, "topcats", key, &rows) {
		return rows, nil
	}
	rows, err := s.prefs.GetTopCategoriesWithPoints(dbctx.Of(ctx), userID, k)
	if err != nil {
		return nil, fmt.Errorf("top categories with points: %w", err)
	}
	if rows == nil {
		rows = []types.CategoryPoints{}
	}
	s.cacheSet(ctx, uc, "topcats", key, rows, s.cfg.TopCategoriesTTL)
	return rows, nil
}

// hydratePosts resolves ids through the post object cache, batch-loading the
// misses. Order follows ids; ids that no longer exist are dropped.
func (s *feedService) hydratePosts(ctx context.Context, ids []uuid.UUID) ([]*types.CreatorPost, error) {
	found := make(map[uuid.UUID]*types.CreatorPost, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		var p types.CreatorPost
		if s.cacheGet(ctx, s.cache, "post_obj", cache.PostObjectKey(id), &p) && p.ID == id {
			found[id] = &p
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) > 0 {
		fetched, err := s.posts.BatchGet(dbctx.Of(ctx), missing)
		if err != nil {
			return nil, fmt.Errorf("batch get posts: %w", err)
		}
		for _, p := range fetched {
			found[p.ID] = p
		}
		s.cachePostObjects(ctx, fetched)
	}
	out := make([]*types.CreatorPost, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
