package feed

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type PersonalPostRepo interface {
	Create(dbc dbctx.Context, posts ...*types.PersonalPost) error
	GetPostsByUsers(dbc dbctx.Context, userIDs []uuid.UUID, before time.Time, limit int) ([]*types.PersonalPost, error)
}

type personalPostRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonalPostRepo(db *gorm.DB, baseLog *logger.Logger) PersonalPostRepo {
	return &personalPostRepo{db: db, log: baseLog.With("repo", "PersonalPostRepo")}
}

func (r *personalPostRepo) Create(dbc dbctx.Context, posts ...*types.PersonalPost) error {
	if len(posts) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&posts).Error
}

func (r *personalPostRepo) GetPostsByUsers(dbc dbctx.Context, userIDs []uuid.UUID, before time.Time, limit int) ([]*types.PersonalPost, error) {
	var posts []*types.PersonalPost
	if len(userIDs) == 0 || limit <= 0 {
		return posts, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id IN ?", userIDs).
		Where("created_at < ?", before.UTC()).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
