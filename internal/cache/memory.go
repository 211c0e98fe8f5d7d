package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	val     []byte
	expires time.Time
}

// MemoryBackend is an in-process backend. Expired entries are dropped when
// read or when Sweep runs; nothing runs in the background.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: map[string]memEntry{}, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (m *MemoryBackend) WithClock(now func() time.Time) *MemoryBackend {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

func (m *MemoryBackend) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true, nil
}

func (m *MemoryBackend) SetBytes(_ context.Context, key string, val []byte, ttl time.Duration) error {
	cp := make([]byte, len(val))
	copy(cp, val)
	m.mu.Lock()
	m.entries[key] = memEntry{val: cp, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryBackend) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
