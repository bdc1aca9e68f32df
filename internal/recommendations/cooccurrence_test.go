package recommendations

import (
	"math"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestResolveCooccurrence(t *testing.T) {
	interest := NewAffinityMap()
	interest.Add(pid(1), 5)
	interest.Add(pid(2), 1)
	seen := mapset.NewThreadUnsafeSet(pid(1), pid(2))

	rows := []SimilarityRow{
		{Seed: pid(1), Candidate: pid(10), CommonUsers: 3, Similarity: 0.5},
		{Seed: pid(2), Candidate: pid(10), CommonUsers: 1, Similarity: 0.2},
		{Seed: pid(1), Candidate: pid(11), CommonUsers: 2, Similarity: 0.4},
		{Seed: pid(1), Candidate: pid(2), CommonUsers: 9, Similarity: 0.9},  // interacted
		{Seed: pid(1), Candidate: pid(12), CommonUsers: 0, Similarity: 0.9}, // no shared users
		{Seed: pid(1), Candidate: pid(13), CommonUsers: 4, Similarity: 0},   // no similarity
		{Seed: pid(3), Candidate: pid(14), CommonUsers: 4, Similarity: 0.9}, // seed without interest
		{Seed: "bogus", Candidate: pid(15), CommonUsers: 4, Similarity: 0.9},
	}

	scores := ResolveCooccurrence(rows, interest, seen)

	assert.Equal(t, 2, scores.Len())
	assert.InDelta(t, 0.5*5*math.Log1p(3)+0.2*1*math.Log1p(1), scores.Get(pid(10)), 1e-12)
	assert.InDelta(t, 0.4*5*math.Log1p(2), scores.Get(pid(11)), 1e-12)
	assert.Equal(t, []string{pid(10), pid(11)}, scores.TopKeys(SeedProductsK))
}

func TestResolveCooccurrenceEmpty(t *testing.T) {
	scores := ResolveCooccurrence(nil, NewAffinityMap(), mapset.NewThreadUnsafeSet[string]())
	assert.Zero(t, scores.Len())
}
