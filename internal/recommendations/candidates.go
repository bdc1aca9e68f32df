// internal/recommendations/candidates.go
// Tiered candidate retrieval: co-occurrence, category, brand, then trending or popular

package recommendations

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
)

// Tier names as reported in meta.source
const (
	TierCooccurrence = "cooccurrence"
	TierCategory     = "category_affinity"
	TierBrand        = "brand_affinity"
	TierTrending     = "trending_views"
	TierPopular      = "popular"
)

var byRatingDesc = []catalog.Order{{Column: "rating", Desc: true}}

// FetchLimit is the per-tier candidate cap for a result limit
func FetchLimit(limit int) int {
	return max(limit*8, 40)
}

// CooccurrenceFetchLimit caps co-occurrence candidates between 120 and 300
func CooccurrenceFetchLimit(limit int) int {
	return min(max(FetchLimit(limit), limit*10, 120), 300)
}

// CandidatePlan carries the signals that drive retrieval
type CandidatePlan struct {
	Limit        int
	Cooccurrence *AffinityMap
	Categories   []string
	Brands       []string
	Trending     *Trending
}

// CandidatePool is the deduplicated candidate list and the tiers that filled it
type CandidatePool struct {
	Products []*Product
	Sources  []string
	ids      mapset.Set[string]
}

func newPool() *CandidatePool {
	return &CandidatePool{Products: []*Product{}, ids: mapset.NewThreadUnsafeSet[string]()}
}

// add keeps the first row seen per id. A tier with rows counts as a source even if all were dupes.
func (p *CandidatePool) add(tier string, products []*Product) {
	if len(products) == 0 {
		return
	}
	p.Sources = append(p.Sources, tier)
	for _, prod := range products {
		if p.ids.Add(prod.ID) {
			p.Products = append(p.Products, prod)
		}
	}
}

// Empty reports whether no tier produced anything
func (p *CandidatePool) Empty() bool {
	return len(p.Products) == 0
}

type tier struct {
	name   string
	filter ProductFilter
}

// CandidateGenerator fetches candidates through the tier chain
type CandidateGenerator struct {
	repo Repository
}

// NewCandidateGenerator creates a generator over repo
func NewCandidateGenerator(repo Repository) *CandidateGenerator {
	return &CandidateGenerator{repo: repo}
}

// affinityTiers are the accumulating tiers, in merge order
func affinityTiers(plan CandidatePlan) []tier {
	fetch := FetchLimit(plan.Limit)
	var tiers []tier

	if plan.Cooccurrence.Len() > 0 {
		coLimit := CooccurrenceFetchLimit(plan.Limit)
		if ids := plan.Cooccurrence.TopKeys(coLimit); len(ids) > 0 {
			tiers = append(tiers, tier{TierCooccurrence, ProductFilter{Column: "id", Values: ids, Limit: coLimit}})
		}
	}
	if len(plan.Categories) > 0 {
		tiers = append(tiers, tier{TierCategory, ProductFilter{Column: "category_id", Values: plan.Categories, Orders: byRatingDesc, Limit: fetch}})
	}
	if len(plan.Brands) > 0 {
		tiers = append(tiers, tier{TierBrand, ProductFilter{Column: "brand", Values: plan.Brands, Orders: byRatingDesc, Limit: fetch}})
	}
	return tiers
}

// Generate builds the pool. Affinity tiers run concurrently and merge in a fixed order;
// their failures only cost signal. The popular tier is the last resort and its failure
// is returned as an UpstreamError.
func (g *CandidateGenerator) Generate(ctx context.Context, plan CandidatePlan) (*CandidatePool, error) {
	pool := newPool()

	tiers := affinityTiers(plan)
	results := make([][]*Product, len(tiers))

	var eg errgroup.Group
	for i, t := range tiers {
		i, t := i, t
		eg.Go(func() error {
			products, err := g.repo.Products(ctx, t.filter)
			if err != nil {
				degraded(ctx, t.name, err)
				return nil
			}
			results[i] = products
			return nil
		})
	}
	eg.Wait()

	for i, t := range tiers {
		pool.add(t.name, results[i])
	}

	if pool.Empty() && plan.Trending.Len() > 0 {
		products, err := g.repo.Products(ctx, ProductFilter{Column: "id", Values: plan.Trending.IDs, Limit: FetchLimit(plan.Limit)})
		if err != nil {
			degraded(ctx, TierTrending, err)
		} else {
			pool.add(TierTrending, products)
		}
	}

	if pool.Empty() {
		products, err := g.repo.Products(ctx, ProductFilter{
			Orders: []catalog.Order{{Column: "reviews_count", Desc: true}, {Column: "rating", Desc: true}},
			Limit:  FetchLimit(plan.Limit),
		})
		if err != nil {
			return nil, &UpstreamError{Step: TierPopular, Err: err}
		}
		pool.add(TierPopular, products)
	}

	for _, src := range pool.Sources {
		tierContributions.WithLabelValues(src).Inc()
	}
	candidatePoolSize.Observe(float64(len(pool.Products)))
	return pool, nil
}

// degraded records an optional signal that could not be read
func degraded(ctx context.Context, signal string, err error) {
	degradedSignals.WithLabelValues(signal).Inc()
	logging.Ctx(ctx).Warn().Err(err).Str("signal", signal).Msg("signal degraded")
}
