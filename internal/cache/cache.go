// Package cache is a namespaced, TTL-only key/value cache with optional
// per-user scoping. Values are JSON encoded; entries are never invalidated on
// write and simply expire.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const DefaultNamespace = "swp"

type Cache interface {
	// Get decodes the entry at key into dst. A miss is (false, nil).
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Clear removes every entry in this view: the whole namespace, or one
	// user's scope for a view returned by User.
	Clear(ctx context.Context) error
	User(userID uuid.UUID) Cache
}

// Backend stores raw bytes. Implementations must treat a missing or expired
// key as (nil, false, nil).
type Backend interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type store struct {
	backend Backend
	prefix  string
}

func New(backend Backend, namespace string) Cache {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &store{backend: backend, prefix: namespace + ":"}
}

func (s *store) full(key string) string { return s.prefix + key }

func (s *store) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.backend.GetBytes(ctx, s.full(key))
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache: ttl must be positive for %q", key)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return s.backend.SetBytes(ctx, s.full(key), raw, ttl)
}

func (s *store) Clear(ctx context.Context) error {
	return s.backend.DeletePrefix(ctx, s.prefix)
}

func (s *store) User(userID uuid.UUID) Cache {
	return &store{backend: s.backend, prefix: s.prefix + "u:" + userID.String() + ":"}
}
