package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/socialfeed-backend/internal/data/repos/feed"
	"github.com/yungbote/socialfeed-backend/internal/data/repos/social"
	"github.com/yungbote/socialfeed-backend/internal/data/repos/user"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

type Repos struct {
	Preferences   feed.PreferenceRepo
	Interactions  feed.InteractionRepo
	Posts         feed.PostRepo
	PersonalPosts feed.PersonalPostRepo
	Reactions     feed.ReactionRepo
	Categories    feed.CategoryRepo
	Social        social.SocialRepo
	Users         user.UserRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Preferences:   feed.NewPreferenceRepo(db, log),
		Interactions:  feed.NewInteractionRepo(db, log),
		Posts:         feed.NewPostRepo(db, log),
		PersonalPosts: feed.NewPersonalPostRepo(db, log),
		Reactions:     feed.NewReactionRepo(db, log),
		Categories:    feed.NewCategoryRepo(db, log),
		Social:        social.NewSocialRepo(db, log),
		Users:         user.NewUserRepo(db, log),
	}
}
