package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
)

// The feed and recommendation engines depend only on these narrow views of
// the data layer. The gorm repos in internal/data/repos and the neo4j graph
// in internal/data/graph satisfy them.

type PreferenceStore interface {
	InitUserPreferences(dbc dbctx.Context, userID uuid.UUID) error
	AddPoints(dbc dbctx.Context, userID, categoryID uuid.UUID, delta int) error
	GetPointsMap(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int, error)
	GetTopCategoriesWithPoints(dbc dbctx.Context, userID uuid.UUID, limit int) ([]types.CategoryPoints, error)
	GetTopCategories(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Category, error)
}

type InteractionTracker interface {
	Touch(dbc dbctx.Context, userID, postID uuid.UUID) error
	GetRecentInteractedPosts(dbc dbctx.Context, userID uuid.UUID, days int) ([]*types.CreatorPost, error)
}

type PostRepository interface {
	Get(dbc dbctx.Context, postID uuid.UUID) (*types.CreatorPost, error)
	GetPostsByUsersInCategory(dbc dbctx.Context, userIDs []uuid.UUID, categoryID uuid.UUID, excludeIDs []uuid.UUID, limit int, before time.Time) ([]*types.CreatorPost, error)
	GetTrendingPostsInCategory(dbc dbctx.Context, categoryID uuid.UUID, excludeUserIDs, excludePostIDs []uuid.UUID, limit int, days int) ([]*types.CreatorPost, error)
	BatchGet(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CreatorPost, error)
	UpdateLikeCounts(dbc dbctx.Context, postID uuid.UUID, likeDelta, dislikeDelta int) error
}

type PersonalPostRepository interface {
	GetPostsByUsers(dbc dbctx.Context, userIDs []uuid.UUID, before time.Time, limit int) ([]*types.PersonalPost, error)
}

type ReactionLookup interface {
	GetUserReactions(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]types.Reaction, error)
	GetUserSavedPostIDs(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
}

// ReactionWriter reports the state each write replaced.
type ReactionWriter interface {
	SetReaction(dbc dbctx.Context, userID, postID uuid.UUID, isDislike bool) (types.Reaction, error)
	ClearReaction(dbc dbctx.Context, userID, postID uuid.UUID) (types.Reaction, error)
	Save(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error)
	Unsave(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error)
}

type SocialGraph interface {
	GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetRequestsTo(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetRequestsFrom(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetSkippedIDs(ctx context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error)
	IsFollowing(ctx context.Context, userID, otherID uuid.UUID) (bool, error)
	GetFriendStatus(ctx context.Context, userID, otherID uuid.UUID) (types.FriendStatus, error)
	SkipSuggestion(ctx context.Context, userID, targetID uuid.UUID, expiresAt *time.Time) error
}

type UserDirectory interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.User, error)
}

type CategoryDirectory interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Category, error)
}
