package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair,priority:1" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_pair,priority:2;index" json:"followee_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Follow) TableName() string { return "follow" }

func (f *Follow) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&f.ID, tx) }

// Friend rows are stored in both directions.
type Friend struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair,priority:1" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_pair,priority:2" json:"friend_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Friend) TableName() string { return "friend" }

func (f *Friend) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&f.ID, tx) }

type FriendRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FromUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_request_pair,priority:1" json:"from_user_id"`
	ToUserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_friend_request_pair,priority:2;index" json:"to_user_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (FriendRequest) TableName() string { return "friend_request" }

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&r.ID, tx) }

// SuggestionSkip hides TargetUserID from UserID's friend suggestions until
// ExpiresAt, or forever when ExpiresAt is nil.
type SuggestionSkip struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_suggestion_skip_pair,priority:1" json:"user_id"`
	TargetUserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_suggestion_skip_pair,priority:2" json:"target_user_id"`
	SkippedAt    time.Time  `gorm:"not null" json:"skipped_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (SuggestionSkip) TableName() string { return "suggestion_skip" }

func (s *SuggestionSkip) BeforeCreate(tx *gorm.DB) error { return beforeCreateHook(&s.ID, tx) }

type FriendStatus string

const (
	FriendStatusNotFriends      FriendStatus = "not_friends"
	FriendStatusPendingOutgoing FriendStatus = "pending_outgoing"
	FriendStatusPendingIncoming FriendStatus = "pending_incoming"
	FriendStatusFriends         FriendStatus = "friends"
)

// SocialUser is a user profile decorated for a viewer.
type SocialUser struct {
	User              *User        `json:"user"`
	FriendStatus      FriendStatus `json:"friend_status"`
	IsFollowing       bool         `json:"is_following"`
	MutualFriendCount int          `json:"mutual_friend_count"`
	MatchRate         int          `json:"match_rate"`
	OverlapCategories []string     `json:"overlap_categories"`
}
