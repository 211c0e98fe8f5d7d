package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/observability"
	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type InteractionAction string

const (
	ActionLike          InteractionAction = "like"
	ActionDislike       InteractionAction = "dislike"
	ActionUnlike        InteractionAction = "unlike"
	ActionUndislike     InteractionAction = "undislike"
	ActionSave          InteractionAction = "save"
	ActionUnsave        InteractionAction = "unsave"
	ActionComment       InteractionAction = "comment"
	ActionRemoveComment InteractionAction = "remove_comment"
)

var interactionDeltas = map[InteractionAction]int{
	ActionLike:          2,
	ActionDislike:       -2,
	ActionSave:          5,
	ActionUnsave:        -4,
	ActionComment:       3,
	ActionRemoveComment: -2,
	ActionUnlike:        -1,
	ActionUndislike:     -1,
}

// InteractionDelta returns the preference delta for an action.
func InteractionDelta(action InteractionAction) (int, bool) {
	d, ok := interactionDeltas[action]
	return d, ok
}

func ParseInteractionAction(raw string) (InteractionAction, error) {
	a := InteractionAction(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := interactionDeltas[a]; !ok {
		return "", fmt.Errorf("unknown action %q: %w", raw, apperr.ErrInvalidArgument)
	}
	return a, nil
}

type InteractionResult struct {
	PostID     uuid.UUID         `json:"post_id"`
	Action     InteractionAction `json:"action"`
	Delta      int               `json:"delta"`
	CategoryID *uuid.UUID        `json:"category_id,omitempty"`
}

type InteractionService interface {
	// Record applies an interaction: reaction/save state, the category
	// preference delta (categorized posts only) and the recency touch.
	Record(ctx context.Context, userID, postID uuid.UUID, action InteractionAction) (*InteractionResult, error)
}

type interactionService struct {
	db           *gorm.DB
	log          *logger.Logger
	posts        PostRepository
	prefs        PreferenceStore
	interactions InteractionTracker
	reactions    ReactionWriter
	metrics      *observability.Metrics
}

// NewInteractionService runs each Record in a transaction when db is non-nil.
func NewInteractionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	posts PostRepository,
	prefs PreferenceStore,
	interactions InteractionTracker,
	reactions ReactionWriter,
	metrics *observability.Metrics,
) InteractionService {
	return &interactionService{
		db:           db,
		log:          baseLog.With("service", "InteractionService"),
		posts:        posts,
		prefs:        prefs,
		interactions: interactions,
		reactions:    reactions,
		metrics:      metrics,
	}
}

func (s *interactionService) Record(ctx context.Context, userID, postID uuid.UUID, action InteractionAction) (*InteractionResult, error) {
	if _, ok := InteractionDelta(action); !ok {
		return nil, fmt.Errorf("unknown action %q: %w", action, apperr.ErrInvalidArgument)
	}
	res := &InteractionResult{PostID: postID, Action: action}

	run := func(dbc dbctx.Context) error {
		post, err := s.posts.Get(dbc, postID)
		if err != nil {
			return fmt.Errorf("load post: %w", err)
		}
		if post == nil {
			return fmt.Errorf("post %s: %w", postID, apperr.ErrNotFound)
		}
		delta, err := s.applyReaction(dbc, userID, postID, action)
		if err != nil {
			return err
		}
		if post.CategoryID != nil {
			res.CategoryID = post.CategoryID
			if delta != 0 {
				if err := s.prefs.AddPoints(dbc, userID, *post.CategoryID, delta); err != nil {
					return fmt.Errorf("add points: %w", err)
				}
				res.Delta = delta
			}
		}
		if err := s.interactions.Touch(dbc, userID, postID); err != nil {
			return fmt.Errorf("touch: %w", err)
		}
		return nil
	}

	var err error
	if s.db != nil {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return run(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	} else {
		err = run(dbctx.Of(ctx))
	}
	if err != nil {
		return nil, err
	}
	s.metrics.Interaction(string(action))
	s.log.Debug("interaction recorded", "user_id", userID, "post_id", postID, "action", action, "delta", res.Delta)
	return res, nil
}

// applyReaction writes the reaction or save state and returns the preference
// delta to apply. Repeating an action, or undoing one that is not in place,
// is a no-op with delta 0. Reaction transitions also shift the post's
// like/dislike counters.
func (s *interactionService) applyReaction(dbc dbctx.Context, userID, postID uuid.UUID, action InteractionAction) (int, error) {
	delta, _ := InteractionDelta(action)
	if s.reactions == nil {
		return delta, nil
	}

	var likeDelta, dislikeDelta int
	switch action {
	case ActionLike, ActionDislike:
		want := types.ReactionLike
		if action == ActionDislike {
			want = types.ReactionDislike
		}
		prior, err := s.reactions.SetReaction(dbc, userID, postID, action == ActionDislike)
		if err != nil {
			return 0, fmt.Errorf("apply %s: %w", action, err)
		}
		if prior == want {
			return 0, nil
		}
		likeDelta, dislikeDelta = counterShift(prior, -1)
		l, d := counterShift(want, 1)
		likeDelta += l
		dislikeDelta += d
	case ActionUnlike, ActionUndislike:
		prior, err := s.reactions.ClearReaction(dbc, userID, postID)
		if err != nil {
			return 0, fmt.Errorf("apply %s: %w", action, err)
		}
		if prior != types.ReactionLike && prior != types.ReactionDislike {
			return 0, nil
		}
		likeDelta, dislikeDelta = counterShift(prior, -1)
	case ActionSave, ActionUnsave:
		write := s.reactions.Save
		if action == ActionUnsave {
			write = s.reactions.Unsave
		}
		changed, err := write(dbc, userID, postID)
		if err != nil {
			return 0, fmt.Errorf("apply %s: %w", action, err)
		}
		if !changed {
			return 0, nil
		}
	}

	if err := s.posts.UpdateLikeCounts(dbc, postID, likeDelta, dislikeDelta); err != nil {
		return 0, fmt.Errorf("update like counts: %w", err)
	}
	return delta, nil
}

func counterShift(r types.Reaction, n int) (like, dislike int) {
	switch r {
	case types.ReactionLike:
		return n, 0
	case types.ReactionDislike:
		return 0, n
	}
	return 0, 0
}
