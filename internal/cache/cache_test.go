package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestStoreRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := New(NewMemoryBackend().WithClock(clk.now), "")

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	if err := c.Set(ctx, "k", ids, 90*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got []uuid.UUID
	ok, err := c.Get(ctx, "k", &got)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if len(got) != 2 || got[0] != ids[0] || got[1] != ids[1] {
		t.Fatalf("round trip mismatch: %v", got)
	}

	clk.t = clk.t.Add(89 * time.Second)
	if ok, _ := c.Get(ctx, "k", &got); !ok {
		t.Fatalf("entry should still be live before its ttl")
	}
	clk.t = clk.t.Add(time.Second)
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatalf("entry must not be served past its ttl")
	}
}

func TestStoreRejectsNonPositiveTTL(t *testing.T) {
	c := New(NewMemoryBackend(), "test")
	if err := c.Set(context.Background(), "k", 1, 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestStoreUserScopes(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	root := New(backend, "swp")
	alice, bob := uuid.New(), uuid.New()

	if err := root.User(alice).Set(ctx, "topcats", "a", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := root.User(bob).Set(ctx, "topcats", "b", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := root.Set(ctx, "global", "g", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var s string
	if ok, _ := root.User(alice).Get(ctx, "topcats", &s); !ok || s != "a" {
		t.Fatalf("alice scope: %v %q", ok, s)
	}
	if ok, _ := root.Get(ctx, "topcats", &s); ok {
		t.Fatalf("unscoped view must not see user entries")
	}

	if err := root.User(alice).Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if ok, _ := root.User(alice).Get(ctx, "topcats", &s); ok {
		t.Fatalf("alice scope should be cleared")
	}
	if ok, _ := root.User(bob).Get(ctx, "topcats", &s); !ok || s != "b" {
		t.Fatalf("bob scope must survive alice's clear")
	}

	if err := root.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if backend.Len() != 0 {
		t.Fatalf("namespace clear left %d entries", backend.Len())
	}
}

func TestStoreNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	a := New(backend, "a")
	b := New(backend, "b")
	if err := a.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var n int
	if ok, _ := b.Get(ctx, "k", &n); ok {
		t.Fatalf("namespace b must not see a's entry")
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if ok, _ := a.Get(ctx, "k", &n); !ok || n != 1 {
		t.Fatalf("clearing b must not touch a")
	}
}

func TestMemoryBackendSweep(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	m := NewMemoryBackend().WithClock(clk.now)
	_ = m.SetBytes(ctx, "short", []byte("1"), time.Second)
	_ = m.SetBytes(ctx, "long", []byte("2"), time.Hour)
	clk.t = clk.t.Add(time.Minute)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if m.Len() != 1 {
		t.Fatalf("want 1 entry left, got %d", m.Len())
	}
}

func TestKeys(t *testing.T) {
	user := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	cat := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	before := time.Date(2024, 5, 6, 7, 8, 59, 999, time.FixedZone("x", 3600))

	if got := MinuteBucket(before); got != "2024-05-06T06:08" {
		t.Fatalf("MinuteBucket = %q", got)
	}
	want := "creator_ids_by_cat:" + user.String() + ":" + cat.String() + ":2024-05-06T06:08:limit9"
	if got := CreatorIDsByCategoryKey(user, cat, before, 9); got != want {
		t.Fatalf("by-cat key = %q, want %q", got, want)
	}
	want = "creator_ids_agg:" + user.String() + ":2024-05-06T06:08:limit10:topk25"
	if got := CreatorIDsAggKey(user, before, 10, 25); got != want {
		t.Fatalf("agg key = %q, want %q", got, want)
	}
	if got := TopCategoriesKey(user, 7); got != "topcats:"+user.String()+":k7" {
		t.Fatalf("topcats key = %q", got)
	}
	// Cursors in the same minute share a bucket.
	if MinuteBucket(before) != MinuteBucket(before.Add(-58*time.Second)) {
		t.Fatalf("same-minute cursors should share a bucket")
	}
}
