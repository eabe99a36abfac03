package matching

import (
	"sort"

	"matching-workers/internal/models"
)

// Policy decides which scored candidates are recommended.
type Policy struct {
	MinScore   float64
	MaxResults int
}

// Apply drops results at or below MinScore, sorts the rest by overall
// score descending and keeps the first MaxResults. Equal scores keep
// their input order. Ranks are assigned from 1.
func (p Policy) Apply(results []models.MatchResult) []models.MatchResult {
	kept := make([]models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.OverallScore > p.MinScore {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].OverallScore > kept[j].OverallScore
	})

	if p.MaxResults > 0 && len(kept) > p.MaxResults {
		kept = kept[:p.MaxResults]
	}
	for i := range kept {
		kept[i].Rank = i + 1
	}
	return kept
}
