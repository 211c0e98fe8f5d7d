package feed

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

const DefaultRecentDays = 30

type InteractionRepo interface {
	Touch(dbc dbctx.Context, userID, postID uuid.UUID) error
	GetRecentInteractedPosts(dbc dbctx.Context, userID uuid.UUID, days int) ([]*types.CreatorPost, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{
		db:  db,
		log: baseLog.With("repo", "InteractionRepo"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *interactionRepo) Touch(dbc dbctx.Context, userID, postID uuid.UUID) error {
	if userID == uuid.Nil || postID == uuid.Nil {
		return nil
	}
	row := &types.PostInteraction{UserID: userID, PostID: postID, LastInteractedAt: r.now()}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_interacted_at"}),
		}).
		Create(row).Error
}

// GetRecentInteractedPosts returns creator posts the user touched within the
// last days, most recently touched first.
func (r *interactionRepo) GetRecentInteractedPosts(dbc dbctx.Context, userID uuid.UUID, days int) ([]*types.CreatorPost, error) {
	var posts []*types.CreatorPost
	if userID == uuid.Nil {
		return posts, nil
	}
	if days <= 0 {
		days = DefaultRecentDays
	}
	cutoff := r.now().Add(-time.Duration(days) * 24 * time.Hour)
	if err := dbc.DB(r.db).
		Model(&types.CreatorPost{}).
		Select("creator_post.*").
		Joins("JOIN post_interaction AS pi ON pi.post_id = creator_post.id").
		Where("pi.user_id = ? AND pi.last_interacted_at > ?", userID, cutoff).
		Order("pi.last_interacted_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
