package feed

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, cats ...*types.Category) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Category, error)
	List(dbc dbctx.Context) ([]*types.Category, error)
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(dbc dbctx.Context, cats ...*types.Category) error {
	if len(cats) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&cats).Error
}

func (r *categoryRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Category, error) {
	var cats []*types.Category
	if len(ids) == 0 {
		return cats, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *categoryRepo) List(dbc dbctx.Context) ([]*types.Category, error) {
	var cats []*types.Category
	if err := dbc.DB(r.db).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}
