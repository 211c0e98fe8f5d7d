package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

// PostDecorator attaches the viewer's reaction and save state to a page of
// posts in one batch. It never writes.
type PostDecorator interface {
	DecorateList(ctx context.Context, viewerID uuid.UUID, items []types.FeedItem) ([]types.FeedPost, error)
}

type postDecorator struct {
	reactions ReactionLookup
	log       *logger.Logger
}

func NewPostDecorator(reactions ReactionLookup, baseLog *logger.Logger) PostDecorator {
	return &postDecorator{reactions: reactions, log: baseLog.With("service", "PostDecorator")}
}

func (d *postDecorator) DecorateList(ctx context.Context, viewerID uuid.UUID, items []types.FeedItem) ([]types.FeedPost, error) {
	out := make([]types.FeedPost, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}
	dbc := dbctx.Of(ctx)
	ids := make([]uuid.UUID, 0, len(items))
	creatorIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.GetID())
		if it.Kind() == types.PostKindCreator {
			creatorIDs = append(creatorIDs, it.GetID())
		}
	}
	reactions, err := d.reactions.GetUserReactions(dbc, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load reactions: %w", err)
	}
	saved := map[uuid.UUID]bool{}
	if len(creatorIDs) > 0 {
		savedIDs, err := d.reactions.GetUserSavedPostIDs(dbc, viewerID, creatorIDs)
		if err != nil {
			return nil, fmt.Errorf("load saves: %w", err)
		}
		for _, id := range savedIDs {
			saved[id] = true
		}
	}
	for _, it := range items {
		reaction, ok := reactions[it.GetID()]
		if !ok {
			reaction = types.ReactionNone
		}
		fp := types.FeedPost{Kind: it.Kind(), Post: it, Reaction: reaction}
		if it.Kind() == types.PostKindCreator {
			isSaved := saved[it.GetID()]
			fp.IsSaved = &isSaved
		}
		out = append(out, fp)
	}
	return out, nil
}
