package matching

import (
	"math"

	"go-matchmaking-backend/internal/domain"
)

// ScoreProfile computes the combined 0-100 match score for an eligible
// candidate, along with the exact distance and the shared sport tags.
// Pure: identical inputs always produce identical outputs.
func ScoreProfile(p *domain.Profile, prefs *domain.Preferences, weights domain.ScoringWeights) (score, distanceKm float64, sharedSports []string) {
	distanceKm = HaversineDistance(prefs.Latitude, prefs.Longitude, p.Latitude, p.Longitude)
	distanceScore := DistanceScore(distanceKm, prefs.MaxDistanceKm)

	ageScore := rangeMidpointScore(float64(p.Age), float64(prefs.MinAge), float64(prefs.MaxAge))
	heightScore := rangeMidpointScore(float64(p.HeightCm), float64(prefs.MinHeightCm), float64(prefs.MaxHeightCm))

	sharedSports = SharedSports(p, prefs)
	sportsScore := SportsScore(len(sharedSports))

	verifiedScore := 0.0
	if p.IsVerified {
		verifiedScore = 1.0
	}

	total := (distanceScore*weights.Distance +
		ageScore*weights.Age +
		sportsScore*weights.Sports +
		verifiedScore*weights.Verified +
		heightScore*weights.Height) * 100.0

	return clamp(total, 0, 100), distanceKm, sharedSports
}

// DistanceScore decays exponentially from 1.0 at distance zero and drops
// to exactly 0 at the hard cutoff distance >= max.
func DistanceScore(distanceKm, maxDistanceKm float64) float64 {
	if distanceKm >= maxDistanceKm {
		return 0.0
	}
	return math.Exp(-distanceKm / (maxDistanceKm * 0.5))
}

// SportsScore rewards breadth of overlap, capped at five shared sports.
// Its natural scale is [0,2] rather than [0,1], so overlap counts double
// before weighting without being allowed to dominate.
func SportsScore(sharedCount int) float64 {
	return (math.Min(float64(sharedCount), 5) / 5) * 2
}

// rangeMidpointScore scores 1.0 at the midpoint of [min,max] and falls
// linearly to 0 at the bounds. A degenerate range (min >= max) is treated
// as a single-value preference with no penalty.
func rangeMidpointScore(value, min, max float64) float64 {
	rng := max - min
	if rng <= 0 {
		return 1.0
	}
	mid := (min + max) / 2
	deviation := math.Abs(value-mid) / (rng / 2)
	return 1.0 - math.Min(deviation, 1.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
