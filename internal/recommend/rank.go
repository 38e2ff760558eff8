package recommend

import (
	"cmp"
	"slices"
)

// Rank drops recommendations below MinMatchPercentage and sorts the rest by match percentage, highest first.
// Equal scores keep their input order. The input slice is not modified.
func Rank(recs []Recommendation) []Recommendation {
	kept := make([]Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.MatchPercentage >= MinMatchPercentage {
			kept = append(kept, rec)
		}
	}

	sortByMatch(kept)

	return kept
}

func sortByMatch(recs []Recommendation) {
	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		return cmp.Compare(b.MatchPercentage, a.MatchPercentage)
	})
}
