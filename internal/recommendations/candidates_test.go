package recommendations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

func TestFetchLimits(t *testing.T) {
	assert.Equal(t, 40, FetchLimit(1))
	assert.Equal(t, 80, FetchLimit(10))
	assert.Equal(t, 400, FetchLimit(50))

	assert.Equal(t, 120, CooccurrenceFetchLimit(1))
	assert.Equal(t, 120, CooccurrenceFetchLimit(10))
	assert.Equal(t, 200, CooccurrenceFetchLimit(20))
	assert.Equal(t, 300, CooccurrenceFetchLimit(50))
}

func ids(products []*Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func generatorWith(store *memStore) *CandidateGenerator {
	return NewCandidateGenerator(NewRepository(store, 0))
}

func TestGenerateAccumulatesAffinityTiers(t *testing.T) {
	store := newMemStore().insert(productsTable,
		productRow(pid(1), withCategory(cid(1)), withBrand("Acme"), withRating(4)),
		productRow(pid(2), withCategory(cid(1)), withRating(5)),
		productRow(pid(3), withBrand("Acme"), withRating(3)),
		productRow(pid(4), withRating(5)),
		productRow(pid(5), withCategory(cid(1)), inactive()),
	)
	cooc := NewAffinityMap()
	cooc.Add(pid(4), 1)

	pool, err := generatorWith(store).Generate(context.Background(), CandidatePlan{
		Limit:        10,
		Cooccurrence: cooc,
		Categories:   []string{cid(1)},
		Brands:       []string{"Acme"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{TierCooccurrence, TierCategory, TierBrand}, pool.Sources)
	assert.Equal(t, []string{pid(4), pid(2), pid(1), pid(3)}, ids(pool.Products), "first-seen order, inactive excluded")
	assert.Empty(t, store.queriesOn(trendingTable))
}

func TestGenerateTierQueries(t *testing.T) {
	store := newMemStore()
	cooc := NewAffinityMap()
	cooc.Add(pid(9), 1)

	_, err := generatorWith(store).Generate(context.Background(), CandidatePlan{
		Limit:        10,
		Cooccurrence: cooc,
		Categories:   []string{cid(1)},
	})
	require.NoError(t, err)

	queries := store.queriesOn(productsTable)
	require.Len(t, queries, 3)

	byColumn := map[string]*catalog.Query{}
	for _, q := range queries {
		key := "popular"
		if len(q.Filters) > 1 {
			key = q.Filters[1].Column
		}
		byColumn[key] = q
	}
	assert.Equal(t, 120, byColumn["id"].Max)
	assert.Equal(t, 80, byColumn["category_id"].Max)
	assert.Equal(t, []catalog.Order{{Column: "rating", Desc: true}}, byColumn["category_id"].Orders)
	assert.Equal(t, []catalog.Order{{Column: "reviews_count", Desc: true}, {Column: "rating", Desc: true}}, byColumn["popular"].Orders)
	assert.Equal(t, catalog.Filter{Column: "is_active", Op: catalog.OpEq, Values: []any{true}}, byColumn["popular"].Filters[0])
}

func TestGenerateTrendingFallback(t *testing.T) {
	store := newMemStore().insert(productsTable,
		productRow(pid(1)),
		productRow(pid(2)),
	)

	pool, err := generatorWith(store).Generate(context.Background(), CandidatePlan{
		Limit:    10,
		Trending: &Trending{IDs: []string{pid(2)}, Counts: map[string]int64{pid(2): 40}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{TierTrending}, pool.Sources)
	assert.Equal(t, []string{pid(2)}, ids(pool.Products))
}

func TestGenerateSkipsTrendingWhenAffinityFound(t *testing.T) {
	store := newMemStore().insert(productsTable,
		productRow(pid(1), withBrand("Acme")),
		productRow(pid(2)),
	)

	pool, err := generatorWith(store).Generate(context.Background(), CandidatePlan{
		Limit:    10,
		Brands:   []string{"Acme"},
		Trending: &Trending{IDs: []string{pid(2)}, Counts: map[string]int64{pid(2): 40}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{TierBrand}, pool.Sources)
}

func TestGeneratePopularFallback(t *testing.T) {
	store := newMemStore().insert(productsTable,
		productRow(pid(1), withReviews(5), withRating(3)),
		productRow(pid(2), withReviews(50), withRating(2)),
		productRow(pid(3), withReviews(5), withRating(4)),
	)

	pool, err := generatorWith(store).Generate(context.Background(), CandidatePlan{
		Limit:      10,
		Categories: []string{cid(9)},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{TierPopular}, pool.Sources)
	assert.Equal(t, []string{pid(2), pid(3), pid(1)}, ids(pool.Products))
}

func TestGenerateEmptyCatalog(t *testing.T) {
	pool, err := generatorWith(newMemStore()).Generate(context.Background(), CandidatePlan{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, pool.Sources)
	assert.True(t, pool.Empty())
}

func TestGenerateDegradedTierFallsThrough(t *testing.T) {
	store := newMemStore().insert(productsTable, productRow(pid(1), withCategory(cid(1))))
	store.fail = func(q *catalog.Query) error {
		if len(q.Filters) > 1 && q.Filters[1].Column == "category_id" {
			return assert.AnError
		}
		return nil
	}

	pool, err := generatorWith(store).Generate(context.Background(), CandidatePlan{
		Limit:      10,
		Categories: []string{cid(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{TierPopular}, pool.Sources)
}

func TestGeneratePopularFailureIsUpstream(t *testing.T) {
	store := newMemStore()
	store.fail = failTable(productsTable)

	_, err := generatorWith(store).Generate(context.Background(), CandidatePlan{Limit: 10})

	require.Error(t, err)
	assert.True(t, IsUpstream(err))
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, TierPopular, upstream.Step)
	assert.Contains(t, err.Error(), "products unavailable")
}
