package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/socialfeed-backend/internal/clients/redis"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
	"github.com/yungbote/socialfeed-backend/internal/platform/neo4jdb"
)

// Clients holds the optional external connections. Either field may be nil
// when its address is not configured.
type Clients struct {
	Redis *goredis.Client
	Neo4j *neo4jdb.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	var out Clients

	rdb, err := redisclient.NewClient(log, cfg.Redis)
	if err != nil {
		return out, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		log.Info("REDIS_ADDR not set; using in-process cache")
	}
	out.Redis = rdb

	// Neo4j is only dialed when it backs the social graph.
	if cfg.SocialGraphBackend == GraphBackendNeo4j {
		n4j, err := neo4jdb.New(log, cfg.Neo4j)
		if err != nil {
			out.Close(context.Background())
			return Clients{}, fmt.Errorf("init neo4j: %w", err)
		}
		out.Neo4j = n4j
	}
	return out, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
