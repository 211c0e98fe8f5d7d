package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PostKind string

const (
	PostKindCreator  PostKind = "creator"
	PostKindPersonal PostKind = "personal"
)

// FeedItem is the capability every post variant exposes to the feed engine.
type FeedItem interface {
	GetID() uuid.UUID
	GetAuthorID() uuid.UUID
	GetCategoryID() *uuid.UUID
	GetCreatedAt() time.Time
	Kind() PostKind
}

type CreatorPost struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID   *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Description  string         `gorm:"column:description" json:"description"`
	HashtagNames datatypes.JSON `gorm:"column:hashtag_names" json:"hashtag_names,omitempty"`
	LikeCount    int            `gorm:"not null;default:0" json:"like_count"`
	DislikeCount int            `gorm:"not null;default:0" json:"dislike_count"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (CreatorPost) TableName() string { return "creator_post" }

func (p *CreatorPost) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utcNow()
	}
	return beforeCreateHook(&p.ID, tx)
}

func (p *CreatorPost) GetID() uuid.UUID          { return p.ID }
func (p *CreatorPost) GetAuthorID() uuid.UUID    { return p.UserID }
func (p *CreatorPost) GetCategoryID() *uuid.UUID { return p.CategoryID }
func (p *CreatorPost) GetCreatedAt() time.Time   { return p.CreatedAt }
func (p *CreatorPost) Kind() PostKind            { return PostKindCreator }

type PersonalPost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string    `gorm:"column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (PersonalPost) TableName() string { return "personal_post" }

func (p *PersonalPost) BeforeCreate(tx *gorm.DB) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utcNow()
	}
	return beforeCreateHook(&p.ID, tx)
}

func (p *PersonalPost) GetID() uuid.UUID          { return p.ID }
func (p *PersonalPost) GetAuthorID() uuid.UUID    { return p.UserID }
func (p *PersonalPost) GetCategoryID() *uuid.UUID { return nil }
func (p *PersonalPost) GetCreatedAt() time.Time   { return p.CreatedAt }
func (p *PersonalPost) Kind() PostKind            { return PostKindPersonal }
