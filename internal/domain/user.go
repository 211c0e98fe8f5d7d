package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	AvatarURL   string    `gorm:"column:avatar_url" json:"avatar_url"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "app_user" }

func (u *User) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&u.ID, tx) }
