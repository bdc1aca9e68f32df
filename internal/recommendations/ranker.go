// internal/recommendations/ranker.go
// Relevance scoring, deterministic ordering and padding

package recommendations

import (
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Score weights
const (
	ratingWeight       = 2.0
	featuredBonus      = 1.0
	categoryWeight     = 3.0
	brandWeight        = 2.0
	tagWeight          = 1.5
	tagOverlapWeight   = 0.25
	trendingWeight     = 0.5
	cooccurrenceWeight = 2.0
)

// Boosts are the item-level signals that do not come from the shopper's own metadata
type Boosts struct {
	Trending     *Trending
	Cooccurrence *AffinityMap
}

// Ranker scores candidates against one shopper's signals
type Ranker struct {
	signals *Signals
	topTags mapset.Set[string]
	boosts  Boosts
}

// NewRanker prepares a ranker. The top tag set is computed once.
func NewRanker(signals *Signals, boosts Boosts) *Ranker {
	return &Ranker{
		signals: signals,
		topTags: mapset.NewThreadUnsafeSet(signals.TopTags()...),
		boosts:  boosts,
	}
}

// Score computes the relevance of p
func (r *Ranker) Score(p *Product) float64 {
	base := p.Rating*ratingWeight + math.Log1p(math.Max(0, float64(p.ReviewsCount)))
	if p.IsFeatured {
		base += featuredBonus
	}

	var category, brand float64
	if p.CategoryID != nil {
		category = r.signals.Categories.Get(*p.CategoryID)
	}
	if p.Brand != nil {
		brand = r.signals.Brands.Get(*p.Brand)
	}

	var tags float64
	overlap := 0
	for _, t := range p.ScoringTags {
		tags += r.signals.Tags.Get(t)
		if r.topTags.Contains(t) {
			overlap++
		}
	}

	views := math.Max(0, float64(r.boosts.Trending.Views(p.ID)))

	return base +
		category*categoryWeight +
		brand*brandWeight +
		tags*tagWeight +
		float64(overlap)*tagOverlapWeight +
		math.Log1p(views)*trendingWeight +
		r.boosts.Cooccurrence.Get(p.ID)*cooccurrenceWeight
}

// ScoreAll scores every unseen, in-stock candidate and sorts by score desc, id asc
func (r *Ranker) ScoreAll(candidates []*Product, seen mapset.Set[string]) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, p := range candidates {
		if seen.Contains(p.ID) || !p.InStock {
			continue
		}
		scored = append(scored, ScoredCandidate{Score: r.Score(p), Product: p})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Product.ID < scored[j].Product.ID
	})
	return scored
}

// Rank returns at most limit products: best scored first, then padded from the
// candidate order. Interacted, already returned and out-of-stock items never appear.
func (r *Ranker) Rank(candidates []*Product, seen mapset.Set[string], limit int) []*Product {
	out := make([]*Product, 0, limit)
	emitted := mapset.NewThreadUnsafeSet[string]()

	for _, sc := range r.ScoreAll(candidates, seen) {
		if len(out) >= limit {
			break
		}
		if emitted.Add(sc.Product.ID) {
			out = append(out, sc.Product)
		}
	}

	for _, p := range candidates {
		if len(out) >= limit {
			break
		}
		if seen.Contains(p.ID) || !p.InStock || emitted.Contains(p.ID) {
			continue
		}
		emitted.Add(p.ID)
		out = append(out, p)
	}
	return out
}
