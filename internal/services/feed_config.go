package services

import "time"

type FeedConfig struct {
	FollowedPoolSize int     `yaml:"followed_pool_size"`
	TrendingPoolSize int     `yaml:"trending_pool_size"`
	TrendingDays     int     `yaml:"trending_days"`
	RecentDays       int     `yaml:"recent_days"`
	FollowedShare    float64 `yaml:"followed_share"`
	TrendingShare    float64 `yaml:"trending_share"`
	DefaultTopK      int     `yaml:"default_top_k"`

	ByCategoryTTL    time.Duration `yaml:"by_category_ttl"`
	AggregateTTL     time.Duration `yaml:"aggregate_ttl"`
	PostObjectTTL    time.Duration `yaml:"post_object_ttl"`
	FollowIDsTTL     time.Duration `yaml:"follow_ids_ttl"`
	TopCategoriesTTL time.Duration `yaml:"top_categories_ttl"`
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		FollowedPoolSize: 50,
		TrendingPoolSize: 30,
		TrendingDays:     30,
		RecentDays:       30,
		FollowedShare:    0.6,
		TrendingShare:    0.75,
		DefaultTopK:      25,
		ByCategoryTTL:    120 * time.Second,
		AggregateTTL:     180 * time.Second,
		PostObjectTTL:    90 * time.Second,
		FollowIDsTTL:     180 * time.Second,
		TopCategoriesTTL: 420 * time.Second,
	}
}

// WithDefaults fills every zero field from DefaultFeedConfig.
func (c FeedConfig) WithDefaults() FeedConfig {
	d := DefaultFeedConfig()
	if c.FollowedPoolSize <= 0 {
		c.FollowedPoolSize = d.FollowedPoolSize
	}
	if c.TrendingPoolSize <= 0 {
		c.TrendingPoolSize = d.TrendingPoolSize
	}
	if c.TrendingDays <= 0 {
		c.TrendingDays = d.TrendingDays
	}
	if c.RecentDays <= 0 {
		c.RecentDays = d.RecentDays
	}
	if c.FollowedShare <= 0 || c.FollowedShare > 1 {
		c.FollowedShare = d.FollowedShare
	}
	if c.TrendingShare <= 0 || c.TrendingShare > 1 {
		c.TrendingShare = d.TrendingShare
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = d.DefaultTopK
	}
	for _, pair := range []struct{ v, def *time.Duration }{
		{&c.ByCategoryTTL, &d.ByCategoryTTL},
		{&c.AggregateTTL, &d.AggregateTTL},
		{&c.PostObjectTTL, &d.PostObjectTTL},
		{&c.FollowIDsTTL, &d.FollowIDsTTL},
		{&c.TopCategoriesTTL, &d.TopCategoriesTTL},
	} {
		if *pair.v <= 0 {
			*pair.v = *pair.def
		}
	}
	return c
}
