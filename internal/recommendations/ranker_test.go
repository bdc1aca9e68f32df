package recommendations

import (
	"math"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

func mustProduct(t *testing.T, row catalog.Row) *Product {
	t.Helper()
	p, ok := productFromRow(row)
	require.True(t, ok)
	return p
}

func emptySignals() *Signals {
	return Aggregate(nil, nil, testNow)
}

func TestScoreFormula(t *testing.T) {
	signals := &Signals{
		Categories: NewAffinityMap(),
		Brands:     NewAffinityMap(),
		Tags:       NewAffinityMap(),
		Interest:   NewAffinityMap(),
	}
	signals.Categories.Add(cid(1), 2)
	signals.Brands.Add("Acme", 1.5)
	signals.Tags.Add("x", 1)
	signals.Tags.Add("y", 0.5)

	cooc := NewAffinityMap()
	cooc.Add(pid(1), 0.75)
	trending := &Trending{IDs: []string{pid(1)}, Counts: map[string]int64{pid(1): 9}}

	p := mustProduct(t, productRow(pid(1),
		withCategory(cid(1)), withBrand("Acme"), withTags("x", " y ", "z"),
		withRating(4), withReviews(19),
		func(r catalog.Row) { r["is_featured"] = true },
	))

	r := NewRanker(signals, Boosts{Trending: trending, Cooccurrence: cooc})

	base := 4*2.0 + math.Log1p(19) + 1
	want := base + 2*3.0 + 1.5*2.0 + 1.5*1.5 + 2*0.25 + math.Log1p(9)*0.5 + 0.75*2.0
	assert.InDelta(t, want, r.Score(p), 1e-12)
}

func TestScoreWithoutSignals(t *testing.T) {
	p := mustProduct(t, productRow(pid(1), withRating(3.5), withReviews(0)))
	r := NewRanker(emptySignals(), Boosts{})
	assert.Equal(t, 7.0, r.Score(p))
}

func TestScoreAllOrdering(t *testing.T) {
	candidates := []*Product{
		mustProduct(t, productRow(pid(3), withRating(4))),
		mustProduct(t, productRow(pid(2), withRating(5))),
		mustProduct(t, productRow(pid(1), withRating(4))),
	}

	scored := NewRanker(emptySignals(), Boosts{}).ScoreAll(candidates, mapset.NewThreadUnsafeSet[string]())

	require.Len(t, scored, 3)
	assert.Equal(t, pid(2), scored[0].Product.ID)
	assert.Equal(t, pid(1), scored[1].Product.ID, "equal scores rank by ascending id")
	assert.Equal(t, pid(3), scored[2].Product.ID)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
}

func TestRankExcludesSeenAndOutOfStock(t *testing.T) {
	candidates := []*Product{
		mustProduct(t, productRow(pid(1), withRating(5))),
		mustProduct(t, productRow(pid(2), withRating(4), withQuantity(float64(0)))),
		mustProduct(t, productRow(pid(3), withRating(3))),
		mustProduct(t, productRow(pid(4), withRating(2), func(r catalog.Row) { r["track_quantity"] = false; r["quantity"] = float64(0) })),
	}
	seen := mapset.NewThreadUnsafeSet(pid(1))

	out := NewRanker(emptySignals(), Boosts{}).Rank(candidates, seen, 10)

	ids := make([]string, len(out))
	for i, p := range out {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{pid(3), pid(4)}, ids)
}

func TestRankRespectsLimit(t *testing.T) {
	var candidates []*Product
	for i := 1; i <= 30; i++ {
		candidates = append(candidates, mustProduct(t, productRow(pid(i), withRating(float64(i%5)))))
	}

	for _, limit := range []int{1, 5, 29, 30, 50} {
		out := NewRanker(emptySignals(), Boosts{}).Rank(candidates, mapset.NewThreadUnsafeSet[string](), limit)
		assert.Len(t, out, min(limit, 30))

		ids := mapset.NewThreadUnsafeSet[string]()
		for _, p := range out {
			assert.True(t, ids.Add(p.ID), "duplicate %s", p.ID)
		}
	}
}

func TestRankDedupsRepeatedCandidates(t *testing.T) {
	p := mustProduct(t, productRow(pid(1)))
	out := NewRanker(emptySignals(), Boosts{}).Rank([]*Product{p, p, p}, mapset.NewThreadUnsafeSet[string](), 10)
	assert.Len(t, out, 1)
}
