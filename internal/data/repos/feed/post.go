package feed

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type PostRepo interface {
	Create(dbc dbctx.Context, posts ...*types.CreatorPost) error
	Get(dbc dbctx.Context, postID uuid.UUID) (*types.CreatorPost, error)
	GetPostsByUsersInCategory(dbc dbctx.Context, userIDs []uuid.UUID, categoryID uuid.UUID, excludeIDs []uuid.UUID, limit int, before time.Time) ([]*types.CreatorPost, error)
	GetTrendingPostsInCategory(dbc dbctx.Context, categoryID uuid.UUID, excludeUserIDs, excludePostIDs []uuid.UUID, limit int, days int) ([]*types.CreatorPost, error)
	BatchGet(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CreatorPost, error)
	UpdateLikeCounts(dbc dbctx.Context, postID uuid.UUID, likeDelta, dislikeDelta int) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{
		db:  db,
		log: baseLog.With("repo", "PostRepo"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *postRepo) Create(dbc dbctx.Context, posts ...*types.CreatorPost) error {
	if len(posts) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&posts).Error
}

func (r *postRepo) Get(dbc dbctx.Context, postID uuid.UUID) (*types.CreatorPost, error) {
	if postID == uuid.Nil {
		return nil, nil
	}
	var post types.CreatorPost
	if err := dbc.DB(r.db).Where("id = ?", postID).Limit(1).Find(&post).Error; err != nil {
		return nil, err
	}
	if post.ID == uuid.Nil {
		return nil, nil
	}
	return &post, nil
}

func (r *postRepo) GetPostsByUsersInCategory(
	dbc dbctx.Context,
	userIDs []uuid.UUID,
	categoryID uuid.UUID,
	excludeIDs []uuid.UUID,
	limit int,
	before time.Time,
) ([]*types.CreatorPost, error) {
	var posts []*types.CreatorPost
	if len(userIDs) == 0 || limit <= 0 {
		return posts, nil
	}
	q := dbc.DB(r.db).
		Where("user_id IN ?", userIDs).
		Where("category_id = ?", categoryID).
		Where("created_at < ?", before.UTC())
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetTrendingPostsInCategory ranks recent posts by total reactions, newest first on ties.
func (r *postRepo) GetTrendingPostsInCategory(
	dbc dbctx.Context,
	categoryID uuid.UUID,
	excludeUserIDs, excludePostIDs []uuid.UUID,
	limit int,
	days int,
) ([]*types.CreatorPost, error) {
	var posts []*types.CreatorPost
	if limit <= 0 {
		return posts, nil
	}
	if days <= 0 {
		days = 30
	}
	cutoff := r.now().Add(-time.Duration(days) * 24 * time.Hour)
	q := dbc.DB(r.db).
		Where("category_id = ?", categoryID).
		Where("created_at >= ?", cutoff)
	if len(excludeUserIDs) > 0 {
		q = q.Where("user_id NOT IN ?", excludeUserIDs)
	}
	if len(excludePostIDs) > 0 {
		q = q.Where("id NOT IN ?", excludePostIDs)
	}
	if err := q.Order("(like_count + dislike_count) DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// BatchGet returns posts in input order; unknown ids are dropped.
func (r *postRepo) BatchGet(dbc dbctx.Context, ids []uuid.UUID) ([]*types.CreatorPost, error) {
	out := []*types.CreatorPost{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*types.CreatorPost
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.CreatorPost, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// UpdateLikeCounts shifts the denormalized reaction counters in place.
func (r *postRepo) UpdateLikeCounts(dbc dbctx.Context, postID uuid.UUID, likeDelta, dislikeDelta int) error {
	if likeDelta == 0 && dislikeDelta == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.CreatorPost{}).
		Where("id = ?", postID).
		Updates(map[string]any{
			"like_count":    gorm.Expr("like_count + ?", likeDelta),
			"dislike_count": gorm.Expr("dislike_count + ?", dislikeDelta),
		}).Error
}
