// internal/recommendations/signals.go
// Time-decayed affinity signals over category, brand and tag, plus per-product interest

package recommendations

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
)

// HalfLife is the age at which an event counts for half its weight
const HalfLife = 14 * 24 * time.Hour

// Top-K sizes
const (
	TopCategoriesK = 5
	TopBrandsK     = 5
	TopTagsK       = 15
	SeedProductsK  = 20
	MetaTagsK      = 10
)

var actionWeights = map[ActionType]float64{
	ActionFavoriteAdd:    5.0,
	ActionCartAdd:        4.0,
	ActionProductView:    1.0,
	ActionFavoriteRemove: -2.0,
	ActionCartRemove:     -1.0,
}

// ActionWeight returns the base weight of an action; unknown actions weigh 0
func ActionWeight(action ActionType) float64 {
	return actionWeights[action]
}

// Recency is 0.5^(age/14d). Future timestamps count as age 0; a nil time does not decay.
func Recency(createdAt *time.Time, now time.Time) float64 {
	if createdAt == nil {
		return 1.0
	}
	ageDays := math.Max(0, now.Sub(*createdAt).Hours()/24)
	halfLifeDays := HalfLife.Hours() / 24
	return math.Pow(0.5, ageDays/halfLifeDays)
}

// AffinityMap accumulates weights per key and remembers first-insertion order
type AffinityMap struct {
	keys    []string
	weights map[string]float64
}

// NewAffinityMap creates an empty map
func NewAffinityMap() *AffinityMap {
	return &AffinityMap{weights: map[string]float64{}}
}

// Add accumulates w onto key
func (m *AffinityMap) Add(key string, w float64) {
	if _, ok := m.weights[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.weights[key] += w
}

// Get returns the weight of key, zero when absent
func (m *AffinityMap) Get(key string) float64 {
	if m == nil {
		return 0
	}
	return m.weights[key]
}

// Len is the number of keys ever added
func (m *AffinityMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// TopKeys returns up to k keys with strictly positive weight, heaviest first.
// Equal weights keep insertion order.
func (m *AffinityMap) TopKeys(k int) []string {
	if m == nil || k <= 0 {
		return []string{}
	}
	ranked := lo.Filter(m.keys, func(key string, _ int) bool {
		return m.weights[key] > 0
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return m.weights[ranked[i]] > m.weights[ranked[j]]
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Signals is everything derived from a shopper's history
type Signals struct {
	Categories *AffinityMap
	Brands     *AffinityMap
	Tags       *AffinityMap
	Interest   *AffinityMap
}

// Aggregate folds events into signals. Events on invalid ids or with unknown actions are skipped.
func Aggregate(events []ActivityEvent, meta map[string]ProductMeta, now time.Time) *Signals {
	s := &Signals{
		Categories: NewAffinityMap(),
		Brands:     NewAffinityMap(),
		Tags:       NewAffinityMap(),
		Interest:   NewAffinityMap(),
	}

	for _, evt := range events {
		if !IsValidID(evt.EntityID) {
			continue
		}
		weight := ActionWeight(evt.Action)
		if weight == 0 {
			continue
		}

		w := weight * Recency(evt.CreatedAt, now)
		if w > 0 {
			s.Interest.Add(evt.EntityID, w)
		}

		m, ok := meta[evt.EntityID]
		if !ok {
			continue
		}
		if m.CategoryID != "" {
			s.Categories.Add(m.CategoryID, w)
		}
		if m.Brand != "" {
			s.Brands.Add(m.Brand, w)
		}
		if len(m.Tags) > 0 {
			share := w / float64(len(m.Tags))
			for _, tag := range m.Tags {
				s.Tags.Add(tag, share)
			}
		}
	}
	return s
}

// TopCategories, TopBrands and TopTags are the affinity keys used for candidate retrieval
func (s *Signals) TopCategories() []string { return s.Categories.TopKeys(TopCategoriesK) }
func (s *Signals) TopBrands() []string     { return s.Brands.TopKeys(TopBrandsK) }
func (s *Signals) TopTags() []string       { return s.Tags.TopKeys(TopTagsK) }

// Seeds are the most interesting products for co-occurrence expansion
func (s *Signals) Seeds() []string { return s.Interest.TopKeys(SeedProductsK) }

// InteractedIDs returns the distinct valid ids of events in first-seen order
func InteractedIDs(events []ActivityEvent) []string {
	ids := lo.FilterMap(events, func(evt ActivityEvent, _ int) (string, bool) {
		return evt.EntityID, IsValidID(evt.EntityID)
	})
	return lo.Uniq(ids)
}
