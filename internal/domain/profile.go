package domain

import (
	"context"
	"time"
)

// Profile is a read-only snapshot of a candidate. The matching pipeline
// never mutates it; the Profile Source owns the authoritative record.
type Profile struct {
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	HeightCm     int       `json:"heightCm"`
	HairColor    string    `json:"hairColor"`
	Gender       string    `json:"gender"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	IsTimeout    bool      `json:"isTimeout"`
	Sports       []string  `json:"sportsPreferences"`
	ImageFileIDs []string  `json:"imageFileIds"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Preferences holds the requester's matching criteria.
// Range fields satisfy min <= max; MaxDistanceKm is strictly positive.
type Preferences struct {
	UserID          string   `json:"userId"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	MaxDistanceKm   float64  `json:"maxDistanceKm" validate:"gt=0"`
	MinAge          int      `json:"minAge" validate:"gte=0"`
	MaxAge          int      `json:"maxAge" validate:"gtefield=MinAge"`
	MinHeightCm     int      `json:"minHeightCm" validate:"gte=0"`
	MaxHeightCm     int      `json:"maxHeightCm" validate:"gtefield=MinHeightCm"`
	PreferredGenders []string `json:"preferredGenders"` // empty = no restriction
	PreferredSports  []string `json:"preferredSports"`
	MaxResults       int      `json:"maxResults"`
}

// WantsGender reports whether the candidate gender passes the preference set.
func (p *Preferences) WantsGender(gender string) bool {
	if len(p.PreferredGenders) == 0 {
		return true
	}
	for _, g := range p.PreferredGenders {
		if g == gender {
			return true
		}
	}
	return false
}

// ScoringWeights are the five coefficients of the match score formula.
// Callers pick weights summing to 1.0 when a 0-100 scale is desired; the
// scorer clamps into [0,100] regardless.
type ScoringWeights struct {
	Distance float64
	Age      float64
	Sports   float64
	Verified float64
	Height   float64
}

// DefaultScoringWeights mirrors the production tuning.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Distance: 0.35,
		Age:      0.20,
		Sports:   0.25,
		Verified: 0.10,
		Height:   0.10,
	}
}

// BoundingBox is an axis-aligned lat/lon rectangle used as a cheap superset
// pre-filter. It may admit points the exact distance check later rejects;
// it must never reject a point the exact check would admit.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether a point lies inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

type ProfileRepository interface {
	// GetProfile returns the user's own profile, or nil if none exists.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// FetchPreferences returns nil (not an error) when no preferences are on record.
	FetchPreferences(ctx context.Context, userID string) (*Preferences, error)
	// FetchCandidates returns profiles inside the bounding box, excluding the
	// given user IDs, capped at limit.
	FetchCandidates(ctx context.Context, box BoundingBox, excludeIDs []string, limit int) ([]Profile, error)
}
