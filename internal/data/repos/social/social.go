package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

// SocialRepo is the relational social graph: follows, symmetric friendships,
// pending friend requests and the suggestion skip list.
type SocialRepo interface {
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	AddFriendship(ctx context.Context, userID, friendID uuid.UUID) error
	CreateFriendRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) error
	SkipSuggestion(ctx context.Context, userID, targetID uuid.UUID, expiresAt *time.Time) error

	GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetRequestsTo(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetRequestsFrom(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetSkippedIDs(ctx context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error)
	IsFollowing(ctx context.Context, userID, otherID uuid.UUID) (bool, error)
	GetFriendStatus(ctx context.Context, userID, otherID uuid.UUID) (types.FriendStatus, error)
}

type socialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSocialRepo(db *gorm.DB, baseLog *logger.Logger) SocialRepo {
	return &socialRepo{db: db, log: baseLog.With("repo", "SocialRepo")}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *socialRepo) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return fmt.Errorf("follow self: %w", apperr.ErrForbidden)
	}
	err := dbctx.Of(ctx).DB(r.db).Create(&types.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("follow: %w", apperr.ErrAlreadyExists)
	}
	return err
}

func (r *socialRepo) AddFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return fmt.Errorf("befriend self: %w", apperr.ErrForbidden)
	}
	return dbctx.Of(ctx).DB(r.db).Transaction(func(tx *gorm.DB) error {
		rows := []*types.Friend{
			{UserID: userID, FriendID: friendID},
			{UserID: friendID, FriendID: userID},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
		return tx.Where(
			"(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userID, friendID, friendID, userID,
		).Delete(&types.FriendRequest{}).Error
	})
}

func (r *socialRepo) CreateFriendRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) error {
	if fromUserID == toUserID {
		return fmt.Errorf("friend request to self: %w", apperr.ErrForbidden)
	}
	err := dbctx.Of(ctx).DB(r.db).Create(&types.FriendRequest{FromUserID: fromUserID, ToUserID: toUserID}).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("friend request: %w", apperr.ErrAlreadyExists)
	}
	return err
}

func (r *socialRepo) SkipSuggestion(ctx context.Context, userID, targetID uuid.UUID, expiresAt *time.Time) error {
	row := &types.SuggestionSkip{
		UserID:       userID,
		TargetUserID: targetID,
		SkippedAt:    time.Now().UTC(),
		ExpiresAt:    expiresAt,
	}
	return dbctx.Of(ctx).DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"skipped_at", "expires_at"}),
		}).
		Create(row).Error
}

func (r *socialRepo) pluckIDs(ctx context.Context, model interface{}, column, where string, args ...interface{}) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := dbctx.Of(ctx).DB(r.db).Model(model).Where(where, args...).Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *socialRepo) GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.pluckIDs(ctx, &types.Follow{}, "followee_id", "follower_id = ?", userID)
}

func (r *socialRepo) GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.pluckIDs(ctx, &types.Friend{}, "friend_id", "user_id = ?", userID)
}

func (r *socialRepo) GetRequestsTo(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.pluckIDs(ctx, &types.FriendRequest{}, "from_user_id", "to_user_id = ?", userID)
}

func (r *socialRepo) GetRequestsFrom(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.pluckIDs(ctx, &types.FriendRequest{}, "to_user_id", "from_user_id = ?", userID)
}

func (r *socialRepo) GetSkippedIDs(ctx context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	return r.pluckIDs(ctx, &types.SuggestionSkip{}, "target_user_id",
		"user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, now.UTC())
}

func (r *socialRepo) exists(ctx context.Context, model interface{}, where string, args ...interface{}) (bool, error) {
	var n int64
	if err := dbctx.Of(ctx).DB(r.db).Model(model).Where(where, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *socialRepo) IsFollowing(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	return r.exists(ctx, &types.Follow{}, "follower_id = ? AND followee_id = ?", userID, otherID)
}

func (r *socialRepo) GetFriendStatus(ctx context.Context, userID, otherID uuid.UUID) (types.FriendStatus, error) {
	checks := []struct {
		status types.FriendStatus
		model  interface{}
		where  string
		args   []interface{}
	}{
		{types.FriendStatusFriends, &types.Friend{}, "user_id = ? AND friend_id = ?", []interface{}{userID, otherID}},
		{types.FriendStatusPendingOutgoing, &types.FriendRequest{}, "from_user_id = ? AND to_user_id = ?", []interface{}{userID, otherID}},
		{types.FriendStatusPendingIncoming, &types.FriendRequest{}, "from_user_id = ? AND to_user_id = ?", []interface{}{otherID, userID}},
	}
	for _, c := range checks {
		ok, err := r.exists(ctx, c.model, c.where, c.args...)
		if err != nil {
			return "", err
		}
		if ok {
			return c.status, nil
		}
	}
	return types.FriendStatusNotFriends, nil
}
