package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostInteraction records the last time a user touched a creator post.
type PostInteraction struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_interaction_user_post,priority:1" json:"user_id"`
	PostID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_interaction_user_post,priority:2" json:"post_id"`
	LastInteractedAt time.Time `gorm:"not null;index" json:"last_interacted_at"`
}

func (PostInteraction) TableName() string { return "post_interaction" }

func (i *PostInteraction) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&i.ID, tx) }

// PostReaction is a like (IsDislike=false) or dislike on any post.
type PostReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_reaction_user_post,priority:1" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_reaction_user_post,priority:2" json:"post_id"`
	IsDislike bool      `gorm:"not null;default:false" json:"is_dislike"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (PostReaction) TableName() string { return "post_reaction" }

func (r *PostReaction) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&r.ID, tx) }

type PostSave struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_save_user_post,priority:1" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_save_user_post,priority:2" json:"post_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (PostSave) TableName() string { return "post_save" }

func (s *PostSave) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&s.ID, tx) }
