package usecase

import (
	"context"
	"log/slog"
	"time"

	"go-matchmaking-backend/internal/cache"
	"go-matchmaking-backend/internal/domain"
	"go-matchmaking-backend/internal/matching"
	"go-matchmaking-backend/pkg/apperror"
	"go-matchmaking-backend/pkg/retry"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MatchUsecaseDeps wires the match usecase. The cache coordinator is
// constructed by the process entry point and injected here; the usecase
// never owns tier lifecycles.
type MatchUsecaseDeps struct {
	Profiles domain.ProfileRepository
	Events   domain.EventRepository
	Cache    *cache.TieredCache
	Pipeline *matching.Pipeline
	Validate *validator.Validate
	Log      *slog.Logger

	DefaultLimit       int
	MaxLimit           int
	CandidateOverfetch int
	RetryAttempts      int
	RetryDelay         time.Duration
}

type matchUsecase struct {
	MatchUsecaseDeps
}

func NewMatchUsecase(deps MatchUsecaseDeps) domain.MatchUsecase {
	if deps.DefaultLimit <= 0 {
		deps.DefaultLimit = 20
	}
	if deps.MaxLimit <= 0 {
		deps.MaxLimit = 100
	}
	if deps.CandidateOverfetch <= 0 {
		deps.CandidateOverfetch = 5
	}
	return &matchUsecase{MatchUsecaseDeps: deps}
}

func (u *matchUsecase) FindMatches(ctx context.Context, req *domain.FindMatchesRequest) (*domain.FindMatchesResponse, error) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	limit := u.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if limit > u.MaxLimit {
		limit = u.MaxLimit
	}
	// Limit zero is a valid request for an empty result set.
	if limit == 0 {
		return &domain.FindMatchesResponse{Matches: []domain.ScoredMatch{}}, nil
	}

	// Merge server-side seen profiles into the client's exclusion list. A
	// failed seen lookup degrades to the client list alone; repeats are
	// preferable to a failed request.
	seen, err := u.Events.GetSeenProfiles(ctx, req.UserID)
	if err != nil {
		u.Log.Warn("failed to fetch seen profiles, proceeding without", "userId", req.UserID, "error", err)
	}
	excludeIDs := cache.NormalizeExclusions(append(seen, req.ExcludeUserIDs...))
	digest := cache.ExclusionDigest(excludeIDs)
	key := cache.MatchKey(req.UserID, limit, digest)

	entry, hit, err := u.Cache.GetOrCompute(ctx, key, func(ctx context.Context) (*domain.CacheEntry, error) {
		return u.computeMatches(ctx, req.UserID, excludeIDs, digest, limit)
	})
	if err != nil {
		return nil, err
	}

	matches := entry.Matches
	if hit {
		// Defense in depth: the digest already keys the entry to this exact
		// exclusion set, but a cached result is never served without
		// re-checking it against the caller's list.
		matches = filterExcluded(matches, excludeIDs)
	}

	u.Log.Info("matches served",
		"userId", req.UserID,
		"count", len(matches),
		"totalCandidates", entry.TotalCandidates,
		"cacheHit", hit,
	)

	return &domain.FindMatchesResponse{
		Matches:      matches,
		NextCursor:   nil,
		TotalResults: entry.TotalCandidates,
	}, nil
}

// computeMatches is the cache-miss path: fetch preferences and the
// geo-bounded pool, run the pipeline, wrap the result as a cache entry.
func (u *matchUsecase) computeMatches(ctx context.Context, userID string, excludeIDs []string, digest string, limit int) (*domain.CacheEntry, error) {
	var prefs *domain.Preferences
	err := retry.Do(ctx, u.RetryAttempts, u.RetryDelay, func(ctx context.Context) error {
		var err error
		prefs, err = u.Profiles.FetchPreferences(ctx, userID)
		return err
	})
	if err != nil {
		return nil, apperror.Unavailable("Failed to fetch preferences", err)
	}
	if prefs == nil {
		return nil, apperror.NotFound("No preferences on record for user")
	}

	// The profile row carries the authoritative location; overlay it on the
	// preferences before any geometry runs.
	var profile *domain.Profile
	err = retry.Do(ctx, u.RetryAttempts, u.RetryDelay, func(ctx context.Context) error {
		var err error
		profile, err = u.Profiles.GetProfile(ctx, userID)
		return err
	})
	if err != nil {
		return nil, apperror.Unavailable("Failed to fetch profile", err)
	}
	if profile != nil {
		prefs.Latitude = profile.Latitude
		prefs.Longitude = profile.Longitude
	}

	box, err := u.Pipeline.BoundingBoxFor(prefs)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var candidates []domain.Profile
	err = retry.Do(ctx, u.RetryAttempts, u.RetryDelay, func(ctx context.Context) error {
		var err error
		candidates, err = u.Profiles.FetchCandidates(ctx, box, excludeIDs, limit*u.CandidateOverfetch)
		return err
	})
	if err != nil {
		return nil, apperror.Unavailable("Failed to fetch candidates", err)
	}

	result, err := u.Pipeline.Run(prefs, candidates, excludeIDs, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.CacheEntry{
		Matches:         result.Matches,
		TotalCandidates: result.TotalCandidates,
		Limit:           limit,
		ExclusionDigest: digest,
		CreatedAt:       time.Now(),
	}, nil
}

func (u *matchUsecase) RecordEvent(ctx context.Context, req *domain.RecordEventRequest) (*domain.RecordEventResponse, error) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	if !domain.ValidEventType(req.EventType) {
		return nil, apperror.BadRequest("Event type must be one of: viewed, liked, passed, matched")
	}

	event := &domain.MatchEvent{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		TargetUserID: req.TargetUserID,
		EventType:    req.EventType,
		CreatedAt:    time.Now().UTC(),
	}

	err := retry.Do(ctx, u.RetryAttempts, u.RetryDelay, func(ctx context.Context) error {
		return u.Events.Record(ctx, event)
	})
	if err != nil {
		return nil, apperror.Unavailable("Failed to record event", err)
	}

	// No cache invalidation here: staleness is bounded by the cache TTL, so
	// a just-passed profile may reappear until the requester's entry ages out.
	return &domain.RecordEventResponse{
		Success: true,
		EventID: event.ID,
	}, nil
}

func (u *matchUsecase) SeenProfiles(ctx context.Context, userID string) (*domain.SeenProfilesResponse, error) {
	if userID == "" {
		return nil, apperror.BadRequest("userId is required")
	}

	seen, err := u.Events.GetSeenProfiles(ctx, userID)
	if err != nil {
		return nil, apperror.Unavailable("Failed to fetch seen profiles", err)
	}
	if seen == nil {
		seen = []string{}
	}

	return &domain.SeenProfilesResponse{
		UserID:       userID,
		SeenProfiles: seen,
		Count:        len(seen),
	}, nil
}

func filterExcluded(matches []domain.ScoredMatch, excludeIDs []string) []domain.ScoredMatch {
	if len(excludeIDs) == 0 {
		return matches
	}
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	out := make([]domain.ScoredMatch, 0, len(matches))
	for _, m := range matches {
		if _, skip := excluded[m.UserID]; skip {
			continue
		}
		out = append(out, m)
	}
	return out
}
