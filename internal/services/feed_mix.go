package services

import (
	"github.com/google/uuid"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
)

// composeCategoryFeed blends the three candidate pools for one category.
//
// Pools are made disjoint by id first (followed wins over trending, both win
// over filler, and nothing in the touched set survives in followed or
// trending). Each pool is shuffled, then slots are filled in priority order:
// floor(limit*followedShare) followed, floor(remaining*trendingShare)
// trending, the rest from filler. If that leaves the page short, leftovers are
// taken in the same priority order. The result is shuffled once more.
func composeCategoryFeed(
	sh Shuffler,
	followed, trending, filler []*types.CreatorPost,
	limit int,
	followedShare, trendingShare float64,
) []*types.CreatorPost {
	out := []*types.CreatorPost{}
	if limit <= 0 {
		return out
	}

	seen := make(map[uuid.UUID]bool, len(followed)+len(trending)+len(filler))
	for _, p := range filler {
		if p != nil {
			seen[p.ID] = true
		}
	}
	followed = keepUnseen(followed, seen)
	trending = keepUnseen(trending, seen)
	filler = keepUnseen(filler, map[uuid.UUID]bool{})

	pools := [3][]*types.CreatorPost{followed, trending, filler}
	for _, pool := range pools {
		shuffleInPlace(sh, pool)
	}

	var taken [3]int
	take := func(i, n int) {
		if n > len(pools[i]) {
			n = len(pools[i])
		}
		if n <= 0 {
			return
		}
		out = append(out, pools[i][:n]...)
		taken[i] = n
	}
	take(0, int(float64(limit)*followedShare))
	take(1, int(float64(limit-len(out))*trendingShare))
	take(2, limit-len(out))

	for i := range pools {
		for _, p := range pools[i][taken[i]:] {
			if len(out) >= limit {
				break
			}
			out = append(out, p)
		}
	}

	shuffleInPlace(sh, out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// keepUnseen drops nil posts and ids already in seen, marking the kept ones.
func keepUnseen(posts []*types.CreatorPost, seen map[uuid.UUID]bool) []*types.CreatorPost {
	out := make([]*types.CreatorPost, 0, len(posts))
	for _, p := range posts {
		if p == nil || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// CategoryWeight is one category's share of an aggregated feed.
type CategoryWeight struct {
	CategoryID uuid.UUID
	Adjusted   int
	Total      int
}

func (w CategoryWeight) Weight() float64 {
	if w.Total <= 0 {
		return 0
	}
	return float64(w.Adjusted) / float64(w.Total)
}

// Target is ceil(limit * weight), computed in integers.
func (w CategoryWeight) Target(limit int) int {
	if limit <= 0 || w.Total <= 0 || w.Adjusted <= 0 {
		return 0
	}
	return (limit*w.Adjusted + w.Total - 1) / w.Total
}

// NormalizeWeights maps points to max(points, 0) + 1, so negative and zero
// signal categories share the same floor. A non-positive total yields nil.
func NormalizeWeights(rows []types.CategoryPoints) []CategoryWeight {
	if len(rows) == 0 {
		return nil
	}
	out := make([]CategoryWeight, 0, len(rows))
	total := 0
	for _, r := range rows {
		adj := max(r.Points, 0) + 1
		total += adj
		out = append(out, CategoryWeight{CategoryID: r.CategoryID, Adjusted: adj})
	}
	if total <= 0 {
		return nil
	}
	for i := range out {
		out[i].Total = total
	}
	return out
}

func postIDs(posts []*types.CreatorPost) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
