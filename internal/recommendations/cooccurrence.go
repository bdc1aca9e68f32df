// internal/recommendations/cooccurrence.go

package recommendations

import (
	"math"

	mapset "github.com/deckarep/golang-set/v2"
)

// ResolveCooccurrence accumulates similarity * seed interest * ln(1 + common users)
// per candidate. Interacted candidates, non-positive statistics and seeds without
// interest are skipped.
func ResolveCooccurrence(rows []SimilarityRow, interest *AffinityMap, interacted mapset.Set[string]) *AffinityMap {
	scores := NewAffinityMap()
	for _, row := range rows {
		if !IsValidID(row.Seed) || !IsValidID(row.Candidate) {
			continue
		}
		if interacted.Contains(row.Candidate) {
			continue
		}
		if row.Similarity <= 0 || row.CommonUsers <= 0 {
			continue
		}
		strength := interest.Get(row.Seed)
		if strength <= 0 {
			continue
		}
		scores.Add(row.Candidate, row.Similarity*strength*math.Log1p(float64(row.CommonUsers)))
	}
	return scores
}
