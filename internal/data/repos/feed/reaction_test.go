package feed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/socialfeed-backend/internal/data/repos/testutil"
	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
)

func TestReactionRepoLookups(t *testing.T) {
	db := testutil.DB(t)
	repo := NewReactionRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(context.Background())
	now := time.Now().UTC()

	viewer := testutil.SeedUser(t, db, "viewer")
	author := testutil.SeedUser(t, db, "author")
	liked := testutil.SeedCreatorPost(t, db, author.ID, nil, now, 0, 0)
	disliked := testutil.SeedCreatorPost(t, db, author.ID, nil, now, 0, 0)
	plain := testutil.SeedCreatorPost(t, db, author.ID, nil, now, 0, 0)

	if _, err := repo.SetReaction(dbc, viewer.ID, liked.ID, false); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}
	if _, err := repo.SetReaction(dbc, viewer.ID, disliked.ID, false); err != nil {
		t.Fatalf("SetReaction: %v", err)
	}
	if _, err := repo.SetReaction(dbc, viewer.ID, disliked.ID, true); err != nil {
		t.Fatalf("SetReaction (flip): %v", err)
	}
	if _, err := repo.Save(dbc, viewer.ID, plain.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ids := []uuid.UUID{liked.ID, disliked.ID, plain.ID}
	reactions, err := repo.GetUserReactions(dbc, viewer.ID, ids)
	if err != nil {
		t.Fatalf("GetUserReactions: %v", err)
	}
	if reactions[liked.ID] != types.ReactionLike || reactions[disliked.ID] != types.ReactionDislike {
		t.Fatalf("unexpected reactions: %+v", reactions)
	}
	if _, ok := reactions[plain.ID]; ok {
		t.Fatalf("plain post should have no reaction")
	}

	saved, err := repo.GetUserSavedPostIDs(dbc, viewer.ID, ids)
	if err != nil {
		t.Fatalf("GetUserSavedPostIDs: %v", err)
	}
	if len(saved) != 1 || saved[0] != plain.ID {
		t.Fatalf("unexpected saves: %+v", saved)
	}
}

func TestReactionRepoReportsPriorState(t *testing.T) {
	db := testutil.DB(t)
	repo := NewReactionRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(context.Background())

	viewer := testutil.SeedUser(t, db, "viewer")
	author := testutil.SeedUser(t, db, "author")
	post := testutil.SeedCreatorPost(t, db, author.ID, nil, time.Now(), 0, 0)

	steps := []struct {
		name  string
		run   func() (types.Reaction, error)
		prior types.Reaction
	}{
		{"like", func() (types.Reaction, error) { return repo.SetReaction(dbc, viewer.ID, post.ID, false) }, types.ReactionNone},
		{"like again", func() (types.Reaction, error) { return repo.SetReaction(dbc, viewer.ID, post.ID, false) }, types.ReactionLike},
		{"dislike", func() (types.Reaction, error) { return repo.SetReaction(dbc, viewer.ID, post.ID, true) }, types.ReactionLike},
		{"clear", func() (types.Reaction, error) { return repo.ClearReaction(dbc, viewer.ID, post.ID) }, types.ReactionDislike},
		{"clear again", func() (types.Reaction, error) { return repo.ClearReaction(dbc, viewer.ID, post.ID) }, types.ReactionNone},
	}
	for _, st := range steps {
		prior, err := st.run()
		if err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if prior != st.prior {
			t.Fatalf("%s: expected prior %q, got %q", st.name, st.prior, prior)
		}
	}

	reactions, err := repo.GetUserReactions(dbc, viewer.ID, []uuid.UUID{post.ID})
	if err != nil || len(reactions) != 0 {
		t.Fatalf("reaction should be cleared: %v, %v", reactions, err)
	}
}

func TestReactionRepoSaveAndUnsaveReportChange(t *testing.T) {
	db := testutil.DB(t)
	repo := NewReactionRepo(db, testutil.Logger(t))
	dbc := dbctx.Of(context.Background())

	viewer := testutil.SeedUser(t, db, "viewer")
	author := testutil.SeedUser(t, db, "author")
	post := testutil.SeedCreatorPost(t, db, author.ID, nil, time.Now(), 0, 0)

	for i, want := range []bool{true, false} {
		changed, err := repo.Save(dbc, viewer.ID, post.ID)
		if err != nil {
			t.Fatalf("Save #%d: %v", i+1, err)
		}
		if changed != want {
			t.Fatalf("Save #%d: expected changed=%v", i+1, want)
		}
	}
	for i, want := range []bool{true, false} {
		changed, err := repo.Unsave(dbc, viewer.ID, post.ID)
		if err != nil {
			t.Fatalf("Unsave #%d: %v", i+1, err)
		}
		if changed != want {
			t.Fatalf("Unsave #%d: expected changed=%v", i+1, want)
		}
	}
	saved, err := repo.GetUserSavedPostIDs(dbc, viewer.ID, []uuid.UUID{post.ID})
	if err != nil || len(saved) != 0 {
		t.Fatalf("save should be removed: %v, %v", saved, err)
	}
}
