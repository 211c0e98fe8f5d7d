package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Identity
		&types.User{},

		// Content
		&types.Category{},
		&types.CreatorPost{},
		&types.PersonalPost{},

		// Engagement + preference signal
		&types.FeedPreference{},
		&types.PostInteraction{},
		&types.PostReaction{},
		&types.PostSave{},

		// Social graph
		&types.Follow{},
		&types.Friend{},
		&types.FriendRequest{},
		&types.SuggestionSkip{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
