// internal/recommendations/models.go
// Typed records the engine works on. Catalog rows are mapped into these at the boundary.

package recommendations

import (
	"errors"
	"time"
)

var (
	ErrNotConfigured = errors.New("catalog store not configured")
	ErrUpstream      = errors.New("upstream fetch failed")
	ErrInvalidMode   = errors.New("invalid mode")
)

// UpstreamError is a mandatory fetch failing with no fallback left
type UpstreamError struct {
	Step string
	Err  error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// ActionType is a tracked shopper action on a product
type ActionType string

const (
	ActionProductView    ActionType = "product_view"
	ActionCartAdd        ActionType = "cart_add"
	ActionFavoriteAdd    ActionType = "favorite_add"
	ActionCartRemove     ActionType = "cart_remove"
	ActionFavoriteRemove ActionType = "favorite_remove"
)

// Mode selects how much signal a request uses
type Mode string

const (
	ModeFull  Mode = "full"
	ModeLight Mode = "light"
)

// ParseMode accepts "", "full" and "light"
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeLight:
		return ModeLight, nil
	}
	return "", ErrInvalidMode
}

// Algorithm reported in result metadata
func (m Mode) Algorithm() string {
	if m == ModeLight {
		return "v1_category_views"
	}
	return "v3_affinity_cooccurrence"
}

// ActivityEvent is one behavioral event, most recent first when fetched
type ActivityEvent struct {
	EntityID  string
	Action    ActionType
	CreatedAt *time.Time
}

// ProductMeta is what the aggregator needs to know about an interacted product
type ProductMeta struct {
	ID         string
	CategoryID string // valid UUID or empty
	Brand      string // trimmed, empty when unknown
	Tags       []string
}

// SimilarityRow is one precomputed co-occurrence pair
type SimilarityRow struct {
	Seed        string
	Candidate   string
	CommonUsers int64
	Similarity  float64
}

// Trending holds most-viewed product ids in store order
type Trending struct {
	IDs    []string
	Counts map[string]int64
}

// Views returns the view count for id, zero when unknown
func (t *Trending) Views(id string) int64 {
	if t == nil {
		return 0
	}
	return t.Counts[id]
}

// Len is the number of trending products
func (t *Trending) Len() int {
	if t == nil {
		return 0
	}
	return len(t.IDs)
}

// Product is a full catalog row eligible for recommendation
type Product struct {
	ID             string
	Name           string
	Slug           *string
	Description    *string
	Price          float64
	CompareAtPrice *float64
	SKU            *string
	Quantity       int64
	TrackQuantity  bool
	CategoryID     *string
	Brand          *string
	MainImage      *string
	Images         []any
	Specifications map[string]any
	Tags           []any
	Rating         float64
	ReviewsCount   int64
	IsFeatured     bool
	IsActive       bool
	CreatedAt      *string
	UpdatedAt      *string

	// InStock applies the stock policy to the raw row
	InStock bool
	// ScoringTags are the trimmed, non-empty tags
	ScoringTags []string
}

// ProductView is the wire shape of a recommended product
type ProductView struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Slug           *string        `json:"slug"`
	Description    *string        `json:"description"`
	Price          float64        `json:"price"`
	CompareAtPrice *float64       `json:"compareAtPrice"`
	SKU            *string        `json:"sku"`
	Quantity       int64          `json:"quantity"`
	TrackQuantity  bool           `json:"trackQuantity"`
	CategoryID     *string        `json:"categoryId"`
	Brand          *string        `json:"brand"`
	MainImage      *string        `json:"mainImage"`
	Images         []any          `json:"images"`
	Specifications map[string]any `json:"specifications"`
	Tags           []any          `json:"tags"`
	Rating         float64        `json:"rating"`
	ReviewsCount   int64          `json:"reviewsCount"`
	IsFeatured     bool           `json:"isFeatured"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      *string        `json:"createdAt"`
	UpdatedAt      *string        `json:"updatedAt"`
}

// View converts p to its wire shape
func (p *Product) View() ProductView {
	return ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		SKU:            p.SKU,
		Quantity:       p.Quantity,
		TrackQuantity:  p.TrackQuantity,
		CategoryID:     p.CategoryID,
		Brand:          p.Brand,
		MainImage:      p.MainImage,
		Images:         p.Images,
		Specifications: p.Specifications,
		Tags:           p.Tags,
		Rating:         p.Rating,
		ReviewsCount:   p.ReviewsCount,
		IsFeatured:     p.IsFeatured,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// ScoredCandidate pairs a candidate with its relevance score
type ScoredCandidate struct {
	Score   float64
	Product *Product
}

// Meta describes how a result was produced
type Meta struct {
	Algorithm               string   `json:"algorithm"`
	Source                  string   `json:"source"`
	RequestID               string   `json:"request_id"`
	GeneratedAt             string   `json:"generated_at"`
	TopCategories           []string `json:"top_categories"`
	TopBrands               []string `json:"top_brands"`
	TopTags                 []string `json:"top_tags"`
	SeenCount               int      `json:"seen_count"`
	CooccurrenceSeedCount   int      `json:"cooccurrence_seed_count"`
	CooccurrenceScoredCount int      `json:"cooccurrence_scored_count"`
	Mode                    Mode     `json:"mode"`
}

// Result is the recommendation response body
type Result struct {
	UserID string        `json:"user_id"`
	Items  []ProductView `json:"items"`
	Meta   Meta          `json:"meta"`
}
