package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&c.ID, tx) }

// FeedPreference is the accumulated affinity of one user for one category.
// Points are unbounded and may go negative.
type FeedPreference struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feed_pref_user_category,priority:1" json:"user_id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feed_pref_user_category,priority:2;index" json:"category_id"`
	Points     int       `gorm:"not null;default:0" json:"points"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (FeedPreference) TableName() string { return "feed_preference" }

func (p *FeedPreference) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&p.ID, tx) }

// CategoryPoints is a (category, points) pair as returned by the preference store.
type CategoryPoints struct {
	CategoryID uuid.UUID `json:"category_id"`
	Points     int       `json:"points"`
}
