package matching

import (
	"sort"

	"go-matchmaking-backend/internal/domain"
)

// Pipeline runs the multi-stage filter-and-score pass over a candidate
// pool: bounding-box pre-filter, demographic filter, scoring, score cutoff,
// rank, truncate. It holds no mutable state across runs and is safe for
// concurrent use.
type Pipeline struct {
	weights  domain.ScoringWeights
	minScore float64
	// boxMargin scales the radius used for the box pre-filter. 1.0 keeps the
	// box a tight superset of the search circle.
	boxMargin float64
}

// Result of one pipeline run.
type Result struct {
	Matches         []domain.ScoredMatch
	TotalCandidates int
}

func NewPipeline(weights domain.ScoringWeights, minScore, boxMargin float64) *Pipeline {
	if boxMargin <= 0 {
		boxMargin = 1.0
	}
	return &Pipeline{
		weights:   weights,
		minScore:  minScore,
		boxMargin: boxMargin,
	}
}

// MinScore returns the configured score cutoff.
func (p *Pipeline) MinScore() float64 {
	return p.minScore
}

// BoundingBoxFor computes the geo pre-filter box for the requester.
func (p *Pipeline) BoundingBoxFor(prefs *domain.Preferences) (domain.BoundingBox, error) {
	return ComputeBoundingBox(prefs.Latitude, prefs.Longitude, prefs.MaxDistanceKm*p.boxMargin)
}

// Run executes the pipeline over the candidate pool in a single pass.
// Candidates equal to the requester or present in the exclusion set are
// skipped before any geometry is evaluated. An empty result is a valid
// outcome, not an error.
func (p *Pipeline) Run(prefs *domain.Preferences, candidates []domain.Profile, excludeIDs []string, limit int) (*Result, error) {
	box, err := p.BoundingBoxFor(prefs)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(excludeIDs)+1)
	excluded[prefs.UserID] = struct{}{}
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	matches := make([]domain.ScoredMatch, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]

		if _, skip := excluded[c.UserID]; skip {
			continue
		}
		if !box.Contains(c.Latitude, c.Longitude) {
			continue
		}
		if !MatchesDemographics(c, prefs) {
			continue
		}

		score, distanceKm, sharedSports := ScoreProfile(c, prefs, p.weights)
		if score < p.minScore {
			continue
		}
		// The box is a superset of the circle; the exact distance is the
		// authoritative radius check.
		if distanceKm > prefs.MaxDistanceKm {
			continue
		}

		matches = append(matches, domain.ScoredMatch{
			UserID:       c.UserID,
			Name:         c.Name,
			Age:          c.Age,
			HeightCm:     c.HeightCm,
			HairColor:    c.HairColor,
			Gender:       c.Gender,
			DistanceKm:   distanceKm,
			MatchScore:   score,
			SharedSports: sharedSports,
			IsVerified:   c.IsVerified,
			ImageFileIDs: c.ImageFileIDs,
			Description:  c.Description,
		})
	}

	// Stable sort keeps input order for full score+distance ties, so
	// identical inputs always produce byte-identical orderings.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	if limit < len(matches) {
		matches = matches[:limit]
	}

	return &Result{
		Matches:         matches,
		TotalCandidates: len(candidates),
	}, nil
}
