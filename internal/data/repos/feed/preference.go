package feed

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

// BaselinePoints is the score every category starts with at registration.
const BaselinePoints = 1

type PreferenceRepo interface {
	InitUserPreferences(dbc dbctx.Context, userID uuid.UUID) error
	AddPoints(dbc dbctx.Context, userID, categoryID uuid.UUID, delta int) error
	GetPointsMap(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int, error)
	GetTopCategoriesWithPoints(dbc dbctx.Context, userID uuid.UUID, limit int) ([]types.CategoryPoints, error)
	GetTopCategories(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Category, error)
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{db: db, log: baseLog.With("repo", "PreferenceRepo")}
}

func (r *preferenceRepo) InitUserPreferences(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	t := dbc.DB(r.db)
	var categoryIDs []uuid.UUID
	if err := t.Model(&types.Category{}).Pluck("id", &categoryIDs).Error; err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]*types.FeedPreference, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		rows = append(rows, &types.FeedPreference{UserID: userID, CategoryID: cid, Points: BaselinePoints})
	}
	return t.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// AddPoints inserts delta for a new (user, category) pair or adds it to the
// existing score in a single statement, so concurrent deltas commute.
func (r *preferenceRepo) AddPoints(dbc dbctx.Context, userID, categoryID uuid.UUID, delta int) error {
	if userID == uuid.Nil || categoryID == uuid.Nil {
		return nil
	}
	row := &types.FeedPreference{UserID: userID, CategoryID: categoryID, Points: delta}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":     gorm.Expr("feed_preference.points + excluded.points"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(row).Error
}

func (r *preferenceRepo) GetPointsMap(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	if userID == uuid.Nil {
		return out, nil
	}
	var rows []*types.FeedPreference
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CategoryID] = row.Points
	}
	return out, nil
}

func (r *preferenceRepo) GetTopCategoriesWithPoints(dbc dbctx.Context, userID uuid.UUID, limit int) ([]types.CategoryPoints, error) {
	out := []types.CategoryPoints{}
	if limit <= 0 {
		return out, nil
	}
	t := dbc.DB(r.db)
	if err := t.Table("feed_preference AS fp").
		Select("fp.category_id AS category_id, fp.points AS points").
		Joins("JOIN category AS c ON c.id = fp.category_id").
		Where("fp.user_id = ?", userID).
		Order("fp.points DESC").
		Order("c.name ASC").
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	if len(out) > 0 {
		return out, nil
	}

	// No signal at all: every category, alphabetically, at zero points.
	var cats []*types.Category
	if err := t.Order("name ASC").Limit(limit).Find(&cats).Error; err != nil {
		return nil, err
	}
	for _, c := range cats {
		out = append(out, types.CategoryPoints{CategoryID: c.ID, Points: 0})
	}
	return out, nil
}

func (r *preferenceRepo) GetTopCategories(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.Category, error) {
	var cats []*types.Category
	if limit <= 0 {
		return cats, nil
	}
	t := dbc.DB(r.db)
	if err := t.Model(&types.Category{}).
		Select("category.*").
		Joins("JOIN feed_preference AS fp ON fp.category_id = category.id").
		Where("fp.user_id = ?", userID).
		Order("fp.points DESC").
		Order("category.name ASC").
		Limit(limit).
		Find(&cats).Error; err != nil {
		return nil, err
	}
	if len(cats) > 0 {
		return cats, nil
	}

	// Fall back to global popularity, then name.
	if err := t.Model(&types.Category{}).
		Select("category.*").
		Joins("LEFT JOIN feed_preference AS fp ON fp.category_id = category.id").
		Group("category.id").
		Order("COALESCE(SUM(fp.points), 0) DESC").
		Order("category.name ASC").
		Limit(limit).
		Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}
