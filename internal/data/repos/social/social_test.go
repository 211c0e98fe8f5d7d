package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/socialfeed-backend/internal/data/repos/testutil"
	types "github.com/yungbote/socialfeed-backend/internal/domain"
	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
)

func TestSocialRepoFollow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSocialRepo(db, testutil.Logger(t))
	ctx := context.Background()

	a := testutil.SeedUser(t, db, "a")
	b := testutil.SeedUser(t, db, "b")

	if err := repo.Follow(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := repo.Follow(ctx, a.ID, b.ID); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("duplicate follow: want ErrAlreadyExists, got %v", err)
	}
	if err := repo.Follow(ctx, a.ID, a.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("self follow: want ErrForbidden, got %v", err)
	}

	ids, err := repo.GetFollowingIDs(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetFollowingIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != b.ID {
		t.Fatalf("unexpected following ids: %v", ids)
	}
	ok, err := repo.IsFollowing(ctx, a.ID, b.ID)
	if err != nil || !ok {
		t.Fatalf("IsFollowing(a,b) = %v, %v", ok, err)
	}
	ok, err = repo.IsFollowing(ctx, b.ID, a.ID)
	if err != nil || ok {
		t.Fatalf("IsFollowing(b,a) = %v, %v", ok, err)
	}
}

func TestSocialRepoFriendLifecycle(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSocialRepo(db, testutil.Logger(t))
	ctx := context.Background()

	a := testutil.SeedUser(t, db, "a")
	b := testutil.SeedUser(t, db, "b")

	status := func(from, to uuid.UUID) types.FriendStatus {
		t.Helper()
		s, err := repo.GetFriendStatus(ctx, from, to)
		if err != nil {
			t.Fatalf("GetFriendStatus: %v", err)
		}
		return s
	}

	if got := status(a.ID, b.ID); got != types.FriendStatusNotFriends {
		t.Fatalf("want not_friends, got %s", got)
	}
	if err := repo.CreateFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("CreateFriendRequest: %v", err)
	}
	if got := status(a.ID, b.ID); got != types.FriendStatusPendingOutgoing {
		t.Fatalf("want pending_outgoing, got %s", got)
	}
	if got := status(b.ID, a.ID); got != types.FriendStatusPendingIncoming {
		t.Fatalf("want pending_incoming, got %s", got)
	}
	to, err := repo.GetRequestsTo(ctx, b.ID)
	if err != nil || len(to) != 1 || to[0] != a.ID {
		t.Fatalf("GetRequestsTo = %v, %v", to, err)
	}
	from, err := repo.GetRequestsFrom(ctx, a.ID)
	if err != nil || len(from) != 1 || from[0] != b.ID {
		t.Fatalf("GetRequestsFrom = %v, %v", from, err)
	}

	if err := repo.AddFriendship(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("AddFriendship: %v", err)
	}
	if got := status(a.ID, b.ID); got != types.FriendStatusFriends {
		t.Fatalf("want friends, got %s", got)
	}
	if got := status(b.ID, a.ID); got != types.FriendStatusFriends {
		t.Fatalf("friendship must be symmetric, got %s", got)
	}
	pending, err := repo.GetRequestsTo(ctx, b.ID)
	if err != nil || len(pending) != 0 {
		t.Fatalf("accepted request should be cleared: %v, %v", pending, err)
	}
	if err := repo.AddFriendship(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("AddFriendship (again): %v", err)
	}
	friends, err := repo.GetFriendIDs(ctx, a.ID)
	if err != nil || len(friends) != 1 || friends[0] != b.ID {
		t.Fatalf("GetFriendIDs = %v, %v", friends, err)
	}
}

func TestSocialRepoSkippedIDsHonourExpiry(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSocialRepo(db, testutil.Logger(t))
	ctx := context.Background()
	now := time.Now().UTC()

	a := testutil.SeedUser(t, db, "a")
	forever := testutil.SeedUser(t, db, "forever")
	active := testutil.SeedUser(t, db, "active")
	expired := testutil.SeedUser(t, db, "expired")

	later := now.Add(24 * time.Hour)
	earlier := now.Add(-time.Hour)
	if err := repo.SkipSuggestion(ctx, a.ID, forever.ID, nil); err != nil {
		t.Fatalf("SkipSuggestion: %v", err)
	}
	if err := repo.SkipSuggestion(ctx, a.ID, active.ID, &later); err != nil {
		t.Fatalf("SkipSuggestion: %v", err)
	}
	if err := repo.SkipSuggestion(ctx, a.ID, expired.ID, &earlier); err != nil {
		t.Fatalf("SkipSuggestion: %v", err)
	}

	ids, err := repo.GetSkippedIDs(ctx, a.ID, now)
	if err != nil {
		t.Fatalf("GetSkippedIDs: %v", err)
	}
	got := map[uuid.UUID]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if len(got) != 2 || !got[forever.ID] || !got[active.ID] {
		t.Fatalf("unexpected skipped ids: %v", ids)
	}

	// Skipping again refreshes the expiry.
	if err := repo.SkipSuggestion(ctx, a.ID, expired.ID, &later); err != nil {
		t.Fatalf("SkipSuggestion (refresh): %v", err)
	}
	ids, err = repo.GetSkippedIDs(ctx, a.ID, now)
	if err != nil || len(ids) != 3 {
		t.Fatalf("after refresh: %v, %v", ids, err)
	}
}
