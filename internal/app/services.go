package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/socialfeed-backend/internal/cache"
	"github.com/yungbote/socialfeed-backend/internal/data/graph"
	"github.com/yungbote/socialfeed-backend/internal/observability"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
	"github.com/yungbote/socialfeed-backend/internal/services"
)

type Services struct {
	Auth            services.AuthService
	Feed            services.FeedService
	Interactions    services.InteractionService
	Recommendations services.RecommendationService

	Cache       cache.Cache
	SocialGraph services.SocialGraph
}

func wireServices(
	ctx context.Context,
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	repos Repos,
	clients Clients,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	var backend cache.Backend
	if clients.Redis != nil {
		backend = cache.NewRedisBackend(clients.Redis, log, metrics, cfg.CacheBreaker)
	} else {
		backend = cache.NewMemoryBackend()
	}
	feedCache := cache.New(backend, cfg.CacheNamespace)

	socialGraph, err := wireSocialGraph(ctx, log, cfg, repos, clients)
	if err != nil {
		return Services{}, err
	}

	decorator := services.NewPostDecorator(repos.Reactions, log)

	feed, err := services.NewFeedService(log, services.FeedDeps{
		Preferences:  repos.Preferences,
		Interactions: repos.Interactions,
		Posts:        repos.Posts,
		PersonalPost: repos.PersonalPosts,
		Social:       socialGraph,
		Decorator:    decorator,
		Cache:        feedCache,
		Shuffler:     services.NewRandomShuffler(),
		Metrics:      metrics,
	}, cfg.Feed)
	if err != nil {
		return Services{}, fmt.Errorf("init feed service: %w", err)
	}

	interactions := services.NewInteractionService(db, log, repos.Posts, repos.Preferences, repos.Interactions, repos.Reactions, metrics)
	recs := services.NewRecommendationService(log, repos.Preferences, socialGraph, repos.Users, repos.Categories, metrics)

	return Services{
		Auth:            auth,
		Feed:            feed,
		Interactions:    interactions,
		Recommendations: recs,
		Cache:           feedCache,
		SocialGraph:     socialGraph,
	}, nil
}

func wireSocialGraph(ctx context.Context, log *logger.Logger, cfg Config, repos Repos, clients Clients) (services.SocialGraph, error) {
	if cfg.SocialGraphBackend != GraphBackendNeo4j {
		return repos.Social, nil
	}
	g, err := graph.NewSocialGraph(clients.Neo4j, log)
	if err != nil {
		return nil, fmt.Errorf("init neo4j social graph: %w", err)
	}
	if err := g.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("neo4j social graph schema: %w", err)
	}
	log.Info("social graph backed by neo4j")
	return g, nil
}
