package matching

import "go-matchmaking-backend/internal/domain"

// MatchesDemographics is the hard eligibility predicate, evaluated in a
// fixed order so a rejection always has a deterministic cause: activity,
// gender, age, height. Scoring is never attempted for a candidate that
// fails any of these checks.
func MatchesDemographics(p *domain.Profile, prefs *domain.Preferences) bool {
	if !p.IsActive || p.IsTimeout {
		return false
	}

	if !prefs.WantsGender(p.Gender) {
		return false
	}

	if p.Age < prefs.MinAge || p.Age > prefs.MaxAge {
		return false
	}

	if p.HeightCm < prefs.MinHeightCm || p.HeightCm > prefs.MaxHeightCm {
		return false
	}

	return true
}

// SharedSports returns the intersection of the candidate's sports and the
// preferred set, preserving the candidate's original ordering.
func SharedSports(p *domain.Profile, prefs *domain.Preferences) []string {
	preferred := make(map[string]struct{}, len(prefs.PreferredSports))
	for _, s := range prefs.PreferredSports {
		preferred[s] = struct{}{}
	}

	var shared []string
	for _, s := range p.Sports {
		if _, ok := preferred[s]; ok {
			shared = append(shared, s)
		}
	}
	return shared
}
