package usecase

import (
	"github.com/feralmap/catwatch/internal/core/domain"
)

// MatchThreshold is the score at or above which a candidate is treated as
// likely the same cat.
const MatchThreshold = 70.0

const (
	breedWeight       = 20.0
	colorWeight       = 25.0
	patternWeight     = 25.0
	distinctiveWeight = 30.0
)

// scoreFeatures compares a stored reference record against a freshly
// extracted query record and returns a weighted partial-credit score in
// [0,100]. Breed contributes all-or-nothing; the three set dimensions
// contribute proportionally to how much of the query's set the candidate
// covers. An empty query set yields zero for its dimension regardless of
// candidate content.
func scoreFeatures(candidate, query domain.FeatureRecord) float64 {
	var score float64

	if query.Breed != "" && query.Breed == candidate.Breed {
		score += breedWeight
	}
	score += colorWeight * overlapRatio(query.Colors, candidate.Colors)
	score += patternWeight * overlapRatio(query.Patterns, candidate.Patterns)
	score += distinctiveWeight * overlapRatio(query.DistinctiveFeatures, candidate.DistinctiveFeatures)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// overlapRatio is |query ∩ candidate| / |query|, treating both slices as
// sets. Returns 0 when the query extracted nothing for the dimension.
func overlapRatio(query, candidate []string) float64 {
	if len(query) == 0 {
		return 0
	}

	candidateSet := make(map[string]struct{}, len(candidate))
	for _, item := range candidate {
		candidateSet[item] = struct{}{}
	}

	querySet := make(map[string]struct{}, len(query))
	matched := 0
	for _, item := range query {
		if _, seen := querySet[item]; seen {
			continue
		}
		querySet[item] = struct{}{}
		if _, ok := candidateSet[item]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(querySet))
}

// resolveMatch scans the whole catalog and keeps the strictly highest
// score that clears MatchThreshold. Ties go to the earlier catalog entry;
// the repository lists cats most-recent-first. Cats without a stored
// feature record are never compared. The scan is linear over the full
// catalog; there is no index or early termination.
func resolveMatch(query domain.FeatureRecord, catalog []domain.Cat) domain.MatchOutcome {
	outcome := domain.MatchOutcome{}

	for i := range catalog {
		if catalog[i].Features == nil {
			continue
		}
		score := scoreFeatures(*catalog[i].Features, query)
		if score < MatchThreshold {
			continue
		}
		if outcome.Candidate == nil || score > outcome.Score {
			outcome = domain.MatchOutcome{
				Candidate:       &catalog[i],
				Score:           score,
				IsLikelySameCat: true,
			}
		}
	}

	return outcome
}
