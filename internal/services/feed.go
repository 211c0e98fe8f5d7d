package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/socialfeed-backend/internal/cache"
	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/observability"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type FeedService interface {
	InitPreferences(ctx context.Context, userID uuid.UUID) error
	GetTopCategories(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Category, error)
	GetPersonalFeed(ctx context.Context, userID uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error)
	// MixCategoryFeed builds one category page from source, bypassing the id-list cache.
	MixCategoryFeed(ctx context.Context, userID, categoryID uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error)
	GetCreatorFeedByCategory(ctx context.Context, userID, categoryID uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error)
	GetCreatorFeed(ctx context.Context, userID uuid.UUID, before time.Time, limit, topK int) ([]types.FeedPost, error)
}

type FeedDeps struct {
	Preferences  PreferenceStore
	Interactions InteractionTracker
	Posts        PostRepository
	PersonalPost PersonalPostRepository
	Social       SocialGraph
	Decorator    PostDecorator
	Cache        cache.Cache
	Shuffler     Shuffler
	Metrics      *observability.Metrics
}

type feedService struct {
	log          *logger.Logger
	prefs        PreferenceStore
	interactions InteractionTracker
	posts        PostRepository
	personal     PersonalPostRepository
	social       SocialGraph
	decorator    PostDecorator
	cache        cache.Cache
	shuffler     Shuffler
	metrics      *observability.Metrics
	tracer       trace.Tracer
	cfg          FeedConfig
	loads        singleflight.Group
}

func NewFeedService(baseLog *logger.Logger, deps FeedDeps, cfg FeedConfig) (FeedService, error) {
	switch {
	case deps.Preferences == nil:
		return nil, fmt.Errorf("feed service: preference store required")
	case deps.Interactions == nil:
		return nil, fmt.Errorf("feed service: interaction tracker required")
	case deps.Posts == nil:
		return nil, fmt.Errorf("feed service: post repository required")
	case deps.Social == nil:
		return nil, fmt.Errorf("feed service: social graph required")
	case deps.Decorator == nil:
		return nil, fmt.Errorf("feed service: decorator required")
	}
	c := deps.Cache
	if c == nil {
		c = cache.New(cache.NewMemoryBackend(), cache.DefaultNamespace)
	}
	sh := deps.Shuffler
	if sh == nil {
		sh = NewRandomShuffler()
	}
	return &feedService{
		log:          baseLog.With("service", "FeedService"),
		prefs:        deps.Preferences,
		interactions: deps.Interactions,
		posts:        deps.Posts,
		personal:     deps.PersonalPost,
		social:       deps.Social,
		decorator:    deps.Decorator,
		cache:        c,
		shuffler:     sh,
		metrics:      deps.Metrics,
		tracer:       observability.Tracer("feed"),
		cfg:          cfg.WithDefaults(),
	}, nil
}

func (s *feedService) InitPreferences(ctx context.Context, userID uuid.UUID) error {
	if err := s.prefs.InitUserPreferences(dbctx.Of(ctx), userID); err != nil {
		return fmt.Errorf("init preferences: %w", err)
	}
	return nil
}

func (s *feedService) GetTopCategories(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Category, error) {
	if limit <= 0 {
		return []*types.Category{}, nil
	}
	cats, err := s.prefs.GetTopCategories(dbctx.Of(ctx), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	return cats, nil
}

func (s *feedService) GetPersonalFeed(ctx context.Context, userID uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error) {
	if limit <= 0 {
		return []types.FeedPost{}, nil
	}
	if s.personal == nil {
		return nil, fmt.Errorf("personal feed: no personal post repository configured")
	}
	started := time.Now()
	friendIDs, err := s.social.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("friend ids: %w", err)
	}
	posts, err := s.personal.GetPostsByUsers(dbctx.Of(ctx), friendIDs, before, limit)
	if err != nil {
		return nil, fmt.Errorf("personal posts: %w", err)
	}
	items := make([]types.FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, p)
	}
	out, err := s.decorator.DecorateList(ctx, userID, items)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFeed("personal", "source", started, len(out))
	return out, nil
}

func (s *feedService) MixCategoryFeed(ctx context.Context, userID, categoryID uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error) {
	if limit <= 0 {
		return []types.FeedPost{}, nil
	}
	posts, err := s.mixCategory(ctx, userID, categoryID, before, limit)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, userID, posts)
}

func (s *feedService) GetCreatorFeedByCategory(ctx context.Context, userID, categoryID uuid.UUID, before time.Time, limit int) ([]types.FeedPost, error) {
	if limit <= 0 {
		return []types.FeedPost{}, nil
	}
	ctx, span := s.tracer.Start(ctx, "feed.by_category", trace.WithAttributes(
		attribute.String("category_id", categoryID.String()),
		attribute.Int("limit", limit),
	))
	defer span.End()

	started := time.Now()
	posts, source, err := s.creatorPostsByCategory(ctx, userID, categoryID, before, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out, err := s.decorate(ctx, userID, posts)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFeed("creator_by_category", source, started, len(out))
	return out, nil
}

func (s *feedService) GetCreatorFeed(ctx context.Context, userID uuid.UUID, before time.Time, limit, topK int) ([]types.FeedPost, error) {
	if limit <= 0 {
		return []types.FeedPost{}, nil
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	ctx, span := s.tracer.Start(ctx, "feed.creator", trace.WithAttributes(
		attribute.Int("limit", limit),
		attribute.Int("top_k", topK),
	))
	defer span.End()
	started := time.Now()

	uc := s.cache.User(userID)
	aggKey := cache.CreatorIDsAggKey(userID, before, limit, topK)

	var cachedIDs []uuid.UUID
	if s.cacheGet(ctx, uc, "creator_ids_agg", aggKey, &cachedIDs) && len(cachedIDs) > 0 {
		posts, err := s.hydratePosts(ctx, cachedIDs)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		shuffleInPlace(s.shuffler, posts)
		out, err := s.decorate(ctx, userID, truncatePosts(posts, limit))
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveFeed("creator", "cache", started, len(out))
		return out, nil
	}

	rows, err := s.topCategoriesWithPoints(ctx, userID, topK)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	weights := NormalizeWeights(rows)
	if len(weights) == 0 {
		return []types.FeedPost{}, nil
	}

	var all []*types.CreatorPost
	seen := map[uuid.UUID]bool{}
	for _, w := range weights {
		target := w.Target(limit)
		if target <= 0 {
			continue
		}
		chunk, _, err := s.creatorPostsByCategory(ctx, userID, w.CategoryID, before, target)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("category %s: %w", w.CategoryID, err)
		}
		for _, p := range chunk {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			all = append(all, p)
		}
	}

	s.cacheSet(ctx, uc, "creator_ids_agg", aggKey, postIDs(all), s.cfg.AggregateTTL)

	shuffleInPlace(s.shuffler, all)
	out, err := s.decorate(ctx, userID, truncatePosts(all, limit))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFeed("creator", "source", started, len(out))
	return out, nil
}

// creatorPostsByCategory serves the per-category id list from cache when
// present, otherwise mixes from source and caches the ids and post objects.
func (s *feedService) creatorPostsByCategory(ctx context.Context, userID, categoryID uuid.UUID, before time.Time, limit int) ([]*types.CreatorPost, string, error) {
	uc := s.cache.User(userID)
	key := cache.CreatorIDsByCategoryKey(userID, categoryID, before, limit)

	var cachedIDs []uuid.UUID
	if s.cacheGet(ctx, uc, "creator_ids_by_cat", key, &cachedIDs) && len(cachedIDs) > 0 {
		posts, err := s.hydratePosts(ctx, cachedIDs)
		return posts, "cache", err
	}

	// Waiters share the load, so it must outlive any one caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(key, func() (any, error) {
		posts, err := s.mixCategory(loadCtx, userID, categoryID, before, limit)
		if err != nil {
			return nil, err
		}
		s.cacheSet(loadCtx, uc, "creator_ids_by_cat", key, postIDs(posts), s.cfg.ByCategoryTTL)
		s.cachePostObjects(loadCtx, posts)
		return posts, nil
	})
	if err != nil {
		return nil, "source", err
	}
	shared := v.([]*types.CreatorPost)
	return append([]*types.CreatorPost(nil), shared...), "source", nil
}

func (s *feedService) mixCategory(ctx context.Context, userID, categoryID uuid.UUID, before time.Time, limit int) ([]*types.CreatorPost, error) {
	dbc := dbctx.Of(ctx)

	touched, err := s.interactions.GetRecentInteractedPosts(dbc, userID, s.cfg.RecentDays)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	touchedIDs := postIDs(touched)

	followIDs, err := s.followIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	followed, err := s.posts.GetPostsByUsersInCategory(dbc, followIDs, categoryID, touchedIDs, s.cfg.FollowedPoolSize, before)
	if err != nil {
		return nil, fmt.Errorf("followed posts: %w", err)
	}

	excludeUsers := make([]uuid.UUID, 0, len(followIDs)+1)
	excludeUsers = append(excludeUsers, followIDs...)
	excludeUsers = append(excludeUsers, userID)
	trending, err := s.posts.GetTrendingPostsInCategory(dbc, categoryID, excludeUsers, touchedIDs, s.cfg.TrendingPoolSize, s.cfg.TrendingDays)
	if err != nil {
		return nil, fmt.Errorf("trending posts: %w", err)
	}

	return composeCategoryFeed(s.shuffler, followed, trending, touched, limit, s.cfg.FollowedShare, s.cfg.TrendingShare), nil
}

func (s *feedService) decorate(ctx context.Context, userID uuid.UUID, posts []*types.CreatorPost) ([]types.FeedPost, error) {
	items := make([]types.FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, p)
	}
	out, err := s.decorator.DecorateList(ctx, userID, items)
	if err != nil {
		return nil, fmt.Errorf("decorate: %w", err)
	}
	return out, nil
}

func truncatePosts(posts []*types.CreatorPost, limit int) []*types.CreatorPost {
	if len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
