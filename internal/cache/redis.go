package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yungbote/socialfeed-backend/internal/observability"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

const clearBatchSize = 1000

type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker; 0 means 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing; 0 means 30s.
	OpenTimeout time.Duration
}

// RedisBackend stores entries with SETEX. Every call goes through a circuit
// breaker so a dead redis fails fast instead of stalling each request on a
// dial timeout.
type RedisBackend struct {
	rdb goredis.Cmdable
	cb  *gobreaker.CircuitBreaker[any]
	log *logger.Logger
}

func NewRedisBackend(rdb goredis.Cmdable, log *logger.Logger, metrics *observability.Metrics, bc BreakerConfig) *RedisBackend {
	trip := bc.ConsecutiveFailures
	if trip == 0 {
		trip = 5
	}
	timeout := bc.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log = log.With("cache", "RedisBackend")
	metrics.SetBreakerState("redis-cache", 0)
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerState(name, stateToFloat(to))
		},
	})
	return &RedisBackend{rdb: rdb, cb: cb, log: log}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

func (r *RedisBackend) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := r.cb.Execute(func() (any, error) {
		raw, err := r.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return raw, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	raw, _ := out.([]byte)
	if raw == nil {
		return nil, false, nil
	}
	return raw, true, nil
}

func (r *RedisBackend) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	_, err := r.cb.Execute(func() (any, error) {
		return nil, r.rdb.SetEx(ctx, key, val, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("redis setex: %w", err)
	}
	return nil
}

// DeletePrefix scans and deletes keys in batches. Not atomic with respect to
// concurrent writers.
func (r *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := r.cb.Execute(func() (any, error) {
		var cursor uint64
		for {
			keys, next, err := r.rdb.Scan(ctx, cursor, prefix+"*", clearBatchSize).Result()
			if err != nil {
				return nil, err
			}
			if len(keys) > 0 {
				if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
					return nil, err
				}
			}
			if next == 0 {
				return nil, nil
			}
			cursor = next
		}
	})
	if err != nil {
		return fmt.Errorf("redis clear %q: %w", prefix, err)
	}
	return nil
}
