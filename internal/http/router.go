package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/socialfeed-backend/internal/http/handlers"
	httpMW "github.com/yungbote/socialfeed-backend/internal/http/middleware"
	"github.com/yungbote/socialfeed-backend/internal/observability"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	FeedHandler        *httpH.FeedHandler
	SocialHandler      *httpH.SocialHandler
	InteractionHandler *httpH.InteractionHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Feed
	if cfg.FeedHandler != nil {
		protected.GET("/feed/creator", cfg.FeedHandler.GetCreatorFeed)
		protected.GET("/feed/creator/by-category", cfg.FeedHandler.GetCreatorFeedByCategory)
		protected.GET("/feed/personal", cfg.FeedHandler.GetPersonalFeed)
		protected.GET("/feed/top-categories", cfg.FeedHandler.GetTopCategories)
		protected.POST("/feed/preferences/init", cfg.FeedHandler.InitPreferences)
	}

	// Interactions
	if cfg.InteractionHandler != nil {
		protected.POST("/posts/:id/interactions", cfg.InteractionHandler.Record)
	}

	// Social
	if cfg.SocialHandler != nil {
		protected.GET("/social/suggestions", cfg.SocialHandler.GetSuggestions)
		protected.POST("/social/suggestions/:id/skip", cfg.SocialHandler.SkipSuggestion)
		protected.GET("/social/users/:id", cfg.SocialHandler.GetSocialUser)
		protected.GET("/social/users/:id/match", cfg.SocialHandler.GetMatch)
	}

	return r
}
