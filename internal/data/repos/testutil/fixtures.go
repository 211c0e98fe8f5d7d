package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
)

func SeedUser(tb testing.TB, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{Username: username, DisplayName: username}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, tx *gorm.DB, name string) *types.Category {
	tb.Helper()
	c := &types.Category{Name: name}
	if err := tx.Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedCreatorPost(tb testing.TB, tx *gorm.DB, authorID uuid.UUID, categoryID *uuid.UUID, createdAt time.Time, likes, dislikes int) *types.CreatorPost {
	tb.Helper()
	p := &types.CreatorPost{
		UserID:       authorID,
		CategoryID:   categoryID,
		Description:  "post",
		LikeCount:    likes,
		DislikeCount: dislikes,
		CreatedAt:    createdAt.UTC(),
	}
	if err := tx.Create(p).Error; err != nil {
		tb.Fatalf("seed creator post: %v", err)
	}
	return p
}

func SeedInteraction(tb testing.TB, tx *gorm.DB, userID, postID uuid.UUID, at time.Time) {
	tb.Helper()
	row := &types.PostInteraction{UserID: userID, PostID: postID, LastInteractedAt: at.UTC()}
	if err := tx.Create(row).Error; err != nil {
		tb.Fatalf("seed interaction: %v", err)
	}
}
