package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	"github.com/yungbote/socialfeed-backend/internal/observability"
	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
	"github.com/yungbote/socialfeed-backend/internal/platform/dbctx"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
)

const (
	mutualBonusPerFriend = 0.05
	mutualBonusCap       = 0.25
	maxOverlapCategories = 3
)

type RecommendationService interface {
	CalculateMatchRate(ctx context.Context, userID, otherID uuid.UUID) (int, error)
	OverlapCategories(ctx context.Context, userID, otherID uuid.UUID) ([]string, error)
	GetFriendSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]types.SocialUser, error)
	// GetSocialUser decorates one user for the viewer.
	GetSocialUser(ctx context.Context, viewerID, otherID uuid.UUID) (*types.SocialUser, error)
	// SkipSuggestion hides targetID from userID's suggestions; ttl <= 0 hides it for good.
	SkipSuggestion(ctx context.Context, userID, targetID uuid.UUID, ttl time.Duration) error
}

type recommendationService struct {
	log        *logger.Logger
	prefs      PreferenceStore
	social     SocialGraph
	users      UserDirectory
	categories CategoryDirectory
	metrics    *observability.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

func NewRecommendationService(
	baseLog *logger.Logger,
	prefs PreferenceStore,
	social SocialGraph,
	users UserDirectory,
	categories CategoryDirectory,
	metrics *observability.Metrics,
) RecommendationService {
	return &recommendationService{
		log:        baseLog.With("service", "RecommendationService"),
		prefs:      prefs,
		social:     social,
		users:      users,
		categories: categories,
		metrics:    metrics,
		tracer:     observability.Tracer("recommendation"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// MatchRate scores two preference vectors 0..100. Cosine similarity over the
// union of categories is remapped from [-1,1] to [0,1] (a zero-magnitude
// vector scores 0), then a mutual friend bonus of 0.05 each, capped at 0.25,
// is added and the sum capped at 1.
func MatchRate(a, b map[uuid.UUID]int, mutualFriends int) int {
	var dot, normA, normB float64
	for id, pa := range a {
		fa := float64(pa)
		normA += fa * fa
		dot += fa * float64(b[id])
	}
	for _, pb := range b {
		fb := float64(pb)
		normB += fb * fb
	}
	sim := 0.0
	if normA > 0 && normB > 0 {
		cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
		sim = 0.5 * (cos + 1)
	}
	bonus := math.Min(mutualBonusPerFriend*float64(max(mutualFriends, 0)), mutualBonusCap)
	return int(math.Round(math.Min(1, sim+bonus) * 100))
}

// RankOverlap returns up to n categories where both users score > 0, ranked
// by the weaker of the two scores descending, then by the gap ascending.
func RankOverlap(a, b map[uuid.UUID]int, n int) []uuid.UUID {
	type cand struct {
		id       uuid.UUID
		low, gap int
	}
	var cands []cand
	for id, pa := range a {
		pb, ok := b[id]
		if !ok || pa <= 0 || pb <= 0 {
			continue
		}
		gap := pa - pb
		if gap < 0 {
			gap = -gap
		}
		cands = append(cands, cand{id: id, low: min(pa, pb), gap: gap})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].low != cands[j].low {
			return cands[i].low > cands[j].low
		}
		if cands[i].gap != cands[j].gap {
			return cands[i].gap < cands[j].gap
		}
		return cands[i].id.String() < cands[j].id.String()
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]uuid.UUID, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.id)
	}
	return out
}

func (s *recommendationService) CalculateMatchRate(ctx context.Context, userID, otherID uuid.UUID) (int, error) {
	if userID == otherID {
		return 100, nil
	}
	dbc := dbctx.Of(ctx)
	a, err := s.prefs.GetPointsMap(dbc, userID)
	if err != nil {
		return 0, fmt.Errorf("points for %s: %w", userID, err)
	}
	b, err := s.prefs.GetPointsMap(dbc, otherID)
	if err != nil {
		return 0, fmt.Errorf("points for %s: %w", otherID, err)
	}
	mutual, err := s.mutualFriendCount(ctx, userID, otherID)
	if err != nil {
		return 0, err
	}
	return MatchRate(a, b, mutual), nil
}

func (s *recommendationService) OverlapCategories(ctx context.Context, userID, otherID uuid.UUID) ([]string, error) {
	dbc := dbctx.Of(ctx)
	a, err := s.prefs.GetPointsMap(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("points for %s: %w", userID, err)
	}
	b, err := s.prefs.GetPointsMap(dbc, otherID)
	if err != nil {
		return nil, fmt.Errorf("points for %s: %w", otherID, err)
	}
	return s.categoryNames(ctx, RankOverlap(a, b, maxOverlapCategories))
}

// categoryNames resolves ids to names, falling back to the id string.
func (s *recommendationService) categoryNames(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	out := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	names := map[uuid.UUID]string{}
	if s.categories != nil {
		cats, err := s.categories.GetByIDs(dbctx.Of(ctx), ids)
		if err != nil {
			return nil, fmt.Errorf("resolve categories: %w", err)
		}
		for _, c := range cats {
			if c != nil && c.Name != "" {
				names[c.ID] = c.Name
			}
		}
	}
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		} else {
			out = append(out, id.String())
		}
	}
	return out, nil
}

func (s *recommendationService) mutualFriendCount(ctx context.Context, userID, otherID uuid.UUID) (int, error) {
	mine, err := s.social.GetFriendIDs(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("friends of %s: %w", userID, err)
	}
	theirs, err := s.social.GetFriendIDs(ctx, otherID)
	if err != nil {
		return 0, fmt.Errorf("friends of %s: %w", otherID, err)
	}
	set := make(map[uuid.UUID]bool, len(mine))
	for _, id := range mine {
		set[id] = true
	}
	n := 0
	for _, id := range theirs {
		if set[id] {
			n++
			delete(set, id)
		}
	}
	return n, nil
}

type scoredCandidate struct {
	id     uuid.UUID
	match  int
	mutual int
	points map[uuid.UUID]int
}

func (s *recommendationService) GetFriendSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]types.SocialUser, error) {
	if limit <= 0 {
		return []types.SocialUser{}, nil
	}
	ctx, span := s.tracer.Start(ctx, "social.friend_suggestions", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	myFriends, err := s.social.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("friends of %s: %w", userID, err)
	}

	// A candidate's mutual count is the number of my friends who list them.
	mutuals := map[uuid.UUID]int{}
	for _, f := range myFriends {
		theirs, err := s.social.GetFriendIDs(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("friends of %s: %w", f, err)
		}
		for _, c := range theirs {
			mutuals[c]++
		}
	}

	excluded := map[uuid.UUID]bool{userID: true}
	for _, id := range myFriends {
		excluded[id] = true
	}
	for _, load := range []func(context.Context, uuid.UUID) ([]uuid.UUID, error){
		s.social.GetRequestsTo,
		s.social.GetRequestsFrom,
		func(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
			return s.social.GetSkippedIDs(ctx, id, s.now())
		},
	} {
		ids, err := load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("suggestion exclusions: %w", err)
		}
		for _, id := range ids {
			excluded[id] = true
		}
	}

	dbc := dbctx.Of(ctx)
	myPoints, err := s.prefs.GetPointsMap(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("points for %s: %w", userID, err)
	}

	cands := make([]scoredCandidate, 0, len(mutuals))
	for id, mutual := range mutuals {
		if excluded[id] {
			continue
		}
		points, err := s.prefs.GetPointsMap(dbc, id)
		if err != nil {
			return nil, fmt.Errorf("points for %s: %w", id, err)
		}
		cands = append(cands, scoredCandidate{
			id:     id,
			match:  MatchRate(myPoints, points, mutual),
			mutual: mutual,
			points: points,
		})
	}
	s.metrics.ObserveSuggestionCandidates(len(cands))

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].match != cands[j].match {
			return cands[i].match > cands[j].match
		}
		if cands[i].mutual != cands[j].mutual {
			return cands[i].mutual > cands[j].mutual
		}
		return cands[i].id.String() < cands[j].id.String()
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	if len(cands) == 0 {
		return []types.SocialUser{}, nil
	}

	ids := make([]uuid.UUID, 0, len(cands))
	for _, c := range cands {
		ids = append(ids, c.id)
	}
	users, err := s.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]types.SocialUser, 0, len(cands))
	for _, c := range cands {
		u, ok := byID[c.id]
		if !ok {
			s.log.Debug("suggestion candidate has no profile, skipping", "target_user_id", c.id)
			continue
		}
		su, err := s.decorate(ctx, userID, u, myPoints, c.points, c.mutual, c.match)
		if err != nil {
			return nil, err
		}
		out = append(out, *su)
	}
	return out, nil
}

func (s *recommendationService) GetSocialUser(ctx context.Context, viewerID, otherID uuid.UUID) (*types.SocialUser, error) {
	dbc := dbctx.Of(ctx)
	u, err := s.users.GetByID(dbc, otherID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", otherID, apperr.ErrNotFound)
	}
	mine, err := s.prefs.GetPointsMap(dbc, viewerID)
	if err != nil {
		return nil, fmt.Errorf("points for %s: %w", viewerID, err)
	}
	theirs, err := s.prefs.GetPointsMap(dbc, otherID)
	if err != nil {
		return nil, fmt.Errorf("points for %s: %w", otherID, err)
	}
	mutual := 0
	match := 100
	if viewerID != otherID {
		if mutual, err = s.mutualFriendCount(ctx, viewerID, otherID); err != nil {
			return nil, err
		}
		match = MatchRate(mine, theirs, mutual)
	}
	return s.decorate(ctx, viewerID, u, mine, theirs, mutual, match)
}

func (s *recommendationService) decorate(
	ctx context.Context,
	viewerID uuid.UUID,
	u *types.User,
	mine, theirs map[uuid.UUID]int,
	mutual, match int,
) (*types.SocialUser, error) {
	following, err := s.social.IsFollowing(ctx, viewerID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("follow status: %w", err)
	}
	status, err := s.social.GetFriendStatus(ctx, viewerID, u.ID)
	if err != nil {
		return nil, fmt.Errorf("friend status: %w", err)
	}
	overlap, err := s.categoryNames(ctx, RankOverlap(mine, theirs, maxOverlapCategories))
	if err != nil {
		return nil, err
	}
	return &types.SocialUser{
		User:              u,
		FriendStatus:      status,
		IsFollowing:       following,
		MutualFriendCount: mutual,
		MatchRate:         match,
		OverlapCategories: overlap,
	}, nil
}

func (s *recommendationService) SkipSuggestion(ctx context.Context, userID, targetID uuid.UUID, ttl time.Duration) error {
	if userID == targetID {
		return fmt.Errorf("skip self: %w", apperr.ErrInvalidArgument)
	}
	var expires *time.Time
	if ttl > 0 {
		t := s.now().Add(ttl)
		expires = &t
	}
	if err := s.social.SkipSuggestion(ctx, userID, targetID, expires); err != nil {
		return fmt.Errorf("skip suggestion: %w", err)
	}
	return nil
}
