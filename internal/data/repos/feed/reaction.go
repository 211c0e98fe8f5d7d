package feed

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

// ReactionRepo answers the viewer-specific decoration lookups for a page of
// posts. The writes report the state they replaced so callers can apply
// side effects only on a real transition.
type ReactionRepo interface {
	// SetReaction returns the reaction that was in place before the call.
	SetReaction(dbc dbctx.Context, userID, postID uuid.UUID, isDislike bool) (types.Reaction, error)
	// ClearReaction returns the reaction it removed, or ReactionNone.
	ClearReaction(dbc dbctx.Context, userID, postID uuid.UUID) (types.Reaction, error)
	// Save and Unsave report whether the saved state changed.
	Save(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error)
	Unsave(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error)
	GetUserReactions(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]types.Reaction, error)
	GetUserSavedPostIDs(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error)
}

type reactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReactionRepo(db *gorm.DB, baseLog *logger.Logger) ReactionRepo {
	return &reactionRepo{db: db, log: baseLog.With("repo", "ReactionRepo")}
}

func reactionOf(isDislike bool) types.Reaction {
	if isDislike {
		return types.ReactionDislike
	}
	return types.ReactionLike
}

// SetReaction inserts the row, or flips an existing row of the opposite
// kind. Each step is a single statement so concurrent calls cannot both
// observe the same prior state.
func (r *reactionRepo) SetReaction(dbc dbctx.Context, userID, postID uuid.UUID, isDislike bool) (types.Reaction, error) {
	tx := dbc.DB(r.db)
	row := &types.PostReaction{UserID: userID, PostID: postID, IsDislike: isDislike}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(row)
	if res.Error != nil {
		return types.ReactionNone, res.Error
	}
	if res.RowsAffected == 1 {
		return types.ReactionNone, nil
	}

	res = tx.Model(&types.PostReaction{}).
		Where("user_id = ? AND post_id = ? AND is_dislike = ?", userID, postID, !isDislike).
		Update("is_dislike", isDislike)
	if res.Error != nil {
		return types.ReactionNone, res.Error
	}
	if res.RowsAffected == 1 {
		return reactionOf(!isDislike), nil
	}
	return reactionOf(isDislike), nil
}

func (r *reactionRepo) ClearReaction(dbc dbctx.Context, userID, postID uuid.UUID) (types.Reaction, error) {
	tx := dbc.DB(r.db)
	for _, isDislike := range []bool{false, true} {
		res := tx.Where("user_id = ? AND post_id = ? AND is_dislike = ?", userID, postID, isDislike).
			Delete(&types.PostReaction{})
		if res.Error != nil {
			return types.ReactionNone, res.Error
		}
		if res.RowsAffected > 0 {
			return reactionOf(isDislike), nil
		}
	}
	return types.ReactionNone, nil
}

func (r *reactionRepo) Save(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error) {
	row := &types.PostSave{UserID: userID, PostID: postID}
	res := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(row)
	return res.RowsAffected == 1, res.Error
}

func (r *reactionRepo) Unsave(dbc dbctx.Context, userID, postID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&types.PostSave{})
	return res.RowsAffected > 0, res.Error
}

func (r *reactionRepo) GetUserReactions(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]types.Reaction, error) {
	out := map[uuid.UUID]types.Reaction{}
	if userID == uuid.Nil || len(postIDs) == 0 {
		return out, nil
	}
	var rows []*types.PostReaction
	if err := dbc.DB(r.db).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.IsDislike {
			out[row.PostID] = types.ReactionDislike
		} else {
			out[row.PostID] = types.ReactionLike
		}
	}
	return out, nil
}

func (r *reactionRepo) GetUserSavedPostIDs(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if userID == uuid.Nil || len(postIDs) == 0 {
		return ids, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.PostSave{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
