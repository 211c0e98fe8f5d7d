package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const minuteLayout = "2006-01-02T15:04"

// MinuteBucket collapses a cursor to its UTC minute so requests within the
// same minute share cache entries.
func MinuteBucket(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(minuteLayout)
}

func CreatorIDsByCategoryKey(userID, categoryID uuid.UUID, before time.Time, limit int) string {
	return fmt.Sprintf("creator_ids_by_cat:%s:%s:%s:limit%d", userID, categoryID, MinuteBucket(before), limit)
}

func CreatorIDsAggKey(userID uuid.UUID, before time.Time, limit, topK int) string {
	return fmt.Sprintf("creator_ids_agg:%s:%s:limit%d:topk%d", userID, MinuteBucket(before), limit, topK)
}

func PostObjectKey(postID uuid.UUID) string {
	return "post_obj:" + postID.String()
}

func FollowIDsKey(userID uuid.UUID) string {
	return "follow_ids:" + userID.String()
}

func TopCategoriesKey(userID uuid.UUID, k int) string {
	return fmt.Sprintf("topcats:%s:k%d", userID, k)
}
