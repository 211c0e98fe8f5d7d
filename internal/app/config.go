package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/socialfeed-backend/internal/cache"
	redisclient "github.com/yungbote/socialfeed-backend/internal/clients/redis"
	"github.com/yungbote/socialfeed-backend/internal/data/db"
	"github.com/yungbote/socialfeed-backend/internal/observability"
	"github.com/yungbote/socialfeed-backend/internal/platform/envutil"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
	"github.com/yungbote/socialfeed-backend/internal/platform/neo4jdb"
	"github.com/yungbote/socialfeed-backend/internal/services"
)

const (
	GraphBackendPostgres = "postgres"
	GraphBackendNeo4j    = "neo4j"
)

type Config struct {
	HTTPAddr    string
	AutoMigrate bool

	Postgres db.PostgresConfig
	Redis    redisclient.Config
	Neo4j    neo4jdb.Config

	CacheNamespace string
	CacheBreaker   cache.BreakerConfig

	// SocialGraphBackend selects where follows/friends/skips are read from.
	SocialGraphBackend string

	JWTSecretKey string
	JWTIssuer    string
	CORSOrigins  []string

	Otel observability.OtelConfig
	Feed services.FeedConfig
}

func LoadConfig(log *logger.Logger) (Config, error) {
	feed := services.DefaultFeedConfig()
	feed.FollowedPoolSize = envutil.Int("FEED_FOLLOWED_POOL_SIZE", feed.FollowedPoolSize, log)
	feed.TrendingPoolSize = envutil.Int("FEED_TRENDING_POOL_SIZE", feed.TrendingPoolSize, log)
	feed.TrendingDays = envutil.Int("FEED_TRENDING_DAYS", feed.TrendingDays, log)
	feed.RecentDays = envutil.Int("FEED_RECENT_DAYS", feed.RecentDays, log)
	feed.FollowedShare = envutil.Float("FEED_FOLLOWED_SHARE", feed.FollowedShare, log)
	feed.TrendingShare = envutil.Float("FEED_TRENDING_SHARE", feed.TrendingShare, log)
	feed.DefaultTopK = envutil.Int("FEED_DEFAULT_TOP_K", feed.DefaultTopK, log)
	feed.ByCategoryTTL = envutil.Seconds("FEED_BY_CATEGORY_TTL_SECONDS", feed.ByCategoryTTL, log)
	feed.AggregateTTL = envutil.Seconds("FEED_AGGREGATE_TTL_SECONDS", feed.AggregateTTL, log)
	feed.PostObjectTTL = envutil.Seconds("FEED_POST_OBJECT_TTL_SECONDS", feed.PostObjectTTL, log)
	feed.FollowIDsTTL = envutil.Seconds("FEED_FOLLOW_IDS_TTL_SECONDS", feed.FollowIDsTTL, log)
	feed.TopCategoriesTTL = envutil.Seconds("FEED_TOP_CATEGORIES_TTL_SECONDS", feed.TopCategoriesTTL, log)

	if path := envutil.String("FEED_CONFIG_FILE", "", log); path != "" {
		if err := applyFeedOverlay(path, &feed); err != nil {
			return Config{}, err
		}
		log.Info("feed config overlay applied", "path", path)
	}

	graphBackend := strings.ToLower(envutil.String("SOCIAL_GRAPH_BACKEND", GraphBackendPostgres, log))
	switch graphBackend {
	case GraphBackendPostgres, GraphBackendNeo4j:
	default:
		return Config{}, fmt.Errorf("unknown SOCIAL_GRAPH_BACKEND %q", graphBackend)
	}

	cfg := Config{
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080", log),
		AutoMigrate: envutil.Bool("POSTGRES_AUTO_MIGRATE", true, log),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost", log),
			Port:     envutil.String("POSTGRES_PORT", "5432", log),
			User:     envutil.String("POSTGRES_USER", "postgres", log),
			Password: envutil.String("POSTGRES_PASSWORD", "", log),
			Name:     envutil.String("POSTGRES_NAME", "socialfeed", log),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
		},
		Redis: redisclient.Config{
			Addr:        envutil.String("REDIS_ADDR", "", log),
			Password:    envutil.String("REDIS_PASSWORD", "", log),
			DB:          envutil.Int("REDIS_DB", 0, log),
			DialTimeout: envutil.Seconds("REDIS_DIAL_TIMEOUT_SECONDS", 5*time.Second, log),
		},
		Neo4j: neo4jdb.Config{
			URI:         envutil.String("NEO4J_URI", "", log),
			User:        envutil.String("NEO4J_USER", "neo4j", log),
			Password:    envutil.String("NEO4J_PASSWORD", "", log),
			Database:    envutil.String("NEO4J_DATABASE", "", log),
			Timeout:     envutil.Seconds("NEO4J_TIMEOUT_SECONDS", 10*time.Second, log),
			MaxPoolSize: envutil.Int("NEO4J_MAX_POOL_SIZE", 50, log),
		},
		CacheNamespace: envutil.String("CACHE_NAMESPACE", cache.DefaultNamespace, log),
		CacheBreaker: cache.BreakerConfig{
			ConsecutiveFailures: uint32(max(envutil.Int("CACHE_BREAKER_FAILURES", 5, log), 0)),
			OpenTimeout:         envutil.Seconds("CACHE_BREAKER_OPEN_SECONDS", 30*time.Second, log),
		},
		SocialGraphBackend: graphBackend,
		JWTSecretKey:       envutil.String("JWT_SECRET_KEY", "", log),
		JWTIssuer:          envutil.String("JWT_ISSUER", "", log),
		CORSOrigins:        splitList(envutil.String("CORS_ORIGINS", "", log)),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "socialfeed", log),
			Environment: envutil.String("OTEL_ENVIRONMENT", "development", log),
			Version:     envutil.String("OTEL_SERVICE_VERSION", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1.0, log),
		},
		Feed: feed.WithDefaults(),
	}
	if cfg.JWTSecretKey == "" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if cfg.SocialGraphBackend == GraphBackendNeo4j && strings.TrimSpace(cfg.Neo4j.URI) == "" {
		return Config{}, fmt.Errorf("SOCIAL_GRAPH_BACKEND=neo4j requires NEO4J_URI")
	}
	return cfg, nil
}

// applyFeedOverlay decodes a YAML document over cfg. Keys absent from the
// file keep their current values; durations use Go syntax ("120s").
func applyFeedOverlay(path string, cfg *services.FeedConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read feed config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse feed config %q: %w", path, err)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
