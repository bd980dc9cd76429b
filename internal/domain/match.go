package domain

import (
	"context"
	"time"
)

// ScoredMatch is one ranked result. Created once per surviving candidate per
// pipeline run, immutable thereafter, safe to cache and serialize.
type ScoredMatch struct {
	UserID       string   `json:"userId"`
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	HeightCm     int      `json:"heightCm"`
	HairColor    string   `json:"hairColor"`
	Gender       string   `json:"gender"`
	DistanceKm   float64  `json:"distanceKm"`
	MatchScore   float64  `json:"matchScore"`
	SharedSports []string `json:"sharedSports"`
	IsVerified   bool     `json:"isVerified"`
	ImageFileIDs []string `json:"imageFileIds"`
	Description  string   `json:"description,omitempty"`
}

// CacheEntry wraps a ranked result set together with the request parameters
// that produced it. Valid only while now - CreatedAt < TTL.
type CacheEntry struct {
	Matches         []ScoredMatch `json:"matches"`
	TotalCandidates int           `json:"totalCandidates"`
	Limit           int           `json:"limit"`
	ExclusionDigest string        `json:"exclusionDigest"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Expired reports whether the entry has aged past the freshness window.
func (e *CacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.CreatedAt) >= ttl
}

// Match event types recorded through the Event Sink.
const (
	EventViewed  = "viewed"
	EventLiked   = "liked"
	EventPassed  = "passed"
	EventMatched = "matched"
)

// ValidEventType reports whether t is a recognized interaction type.
func ValidEventType(t string) bool {
	switch t {
	case EventViewed, EventLiked, EventPassed, EventMatched:
		return true
	}
	return false
}

type MatchEvent struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	TargetUserID string    `json:"targetUserId"`
	EventType    string    `json:"eventType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FindMatchesRequest is the body of POST /api/v1/matches/find. Limit is a
// pointer so an omitted field (-> server default) is distinguishable from
// an explicit 0 (-> empty result).
type FindMatchesRequest struct {
	UserID         string   `json:"userId" validate:"required"`
	Limit          *int     `json:"limit" validate:"omitempty,gte=0"`
	ExcludeUserIDs []string `json:"excludeUserIds"`
}

// FindMatchesResponse mirrors the public wire shape.
type FindMatchesResponse struct {
	Matches      []ScoredMatch `json:"matches"`
	NextCursor   *string       `json:"nextCursor"`
	TotalResults int           `json:"totalResults"`
}

// RecordEventRequest is the body of POST /api/v1/matches/event.
type RecordEventRequest struct {
	UserID       string `json:"userId" validate:"required"`
	TargetUserID string `json:"targetUserId" validate:"required"`
	EventType    string `json:"eventType" validate:"required"`
}

type RecordEventResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId"`
}

// SeenProfilesResponse lists profile IDs already surfaced to a user.
type SeenProfilesResponse struct {
	UserID       string   `json:"userId"`
	SeenProfiles []string `json:"seenProfiles"`
	Count        int      `json:"count"`
}

type EventRepository interface {
	// Record durably stores one interaction event.
	Record(ctx context.Context, event *MatchEvent) error
	// GetSeenProfiles returns the IDs of profiles the user has interacted with.
	GetSeenProfiles(ctx context.Context, userID string) ([]string, error)
}

type MatchUsecase interface {
	FindMatches(ctx context.Context, req *FindMatchesRequest) (*FindMatchesResponse, error)
	RecordEvent(ctx context.Context, req *RecordEventRequest) (*RecordEventResponse, error)
	SeenProfiles(ctx context.Context, userID string) (*SeenProfilesResponse, error)
}
