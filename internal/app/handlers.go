package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/socialfeed-backend/internal/http/handlers"
	httpMW "github.com/yungbote/socialfeed-backend/internal/http/middleware"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type Handlers struct {
	Feed        *httpH.FeedHandler
	Social      *httpH.SocialHandler
	Interaction *httpH.InteractionHandler
	Health      *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, svc Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Feed:        httpH.NewFeedHandler(svc.Feed),
		Social:      httpH.NewSocialHandler(svc.Recommendations),
		Interaction: httpH.NewInteractionHandler(svc.Interactions),
		Health:      httpH.NewHealthHandler(readinessProbes(db, clients)),
	}
}

func readinessProbes(db *gorm.DB, clients Clients) map[string]httpH.Probe {
	probes := map[string]httpH.Probe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		probes["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}
	if clients.Neo4j != nil {
		probes["neo4j"] = func(ctx context.Context) error {
			return clients.Neo4j.Driver.VerifyConnectivity(ctx)
		}
	}
	return probes
}

func wireAuthMiddleware(log *logger.Logger, svc Services) *httpMW.AuthMiddleware {
	return httpMW.NewAuthMiddleware(log, svc.Auth)
}
