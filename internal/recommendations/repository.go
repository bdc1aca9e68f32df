// internal/recommendations/repository.go
// Catalog reads used by the engine, mapped to typed records

package recommendations

import (
	"context"
	"fmt"
	"time"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

const (
	productsTable     = "products"
	trendingTable     = "top_viewed_products"
	similaritiesTable = "product_similar_products"

	// MetadataLookupLimit caps how many interacted ids get a metadata lookup
	MetadataLookupLimit = 200
	// SimilarityRowLimit caps co-occurrence rows per request
	SimilarityRowLimit = 1000
)

var topProductColumns = []string{"id", "name", "price", "rating", "reviews_count", "main_image", "category_id"}

// ProductFilter selects active products. An empty Column means no membership filter.
type ProductFilter struct {
	Column string
	Values []string
	Orders []catalog.Order
	Limit  int
}

// Repository defines the catalog reads the engine depends on
type Repository interface {
	RecentActivity(ctx context.Context, userID, token string, mode Mode, limit int) []ActivityEvent
	ProductMeta(ctx context.Context, ids []string) (map[string]ProductMeta, error)
	Trending(ctx context.Context, limit int) (*Trending, error)
	SimilarProducts(ctx context.Context, seeds []string, limit int) ([]SimilarityRow, error)
	Products(ctx context.Context, filter ProductFilter) ([]*Product, error)
	TopProducts(ctx context.Context, limit int) ([]catalog.Row, error)
}

type repository struct {
	store    catalog.Store
	activity *ActivityFetcher
	timeout  time.Duration
}

// NewRepository creates a repository over store. Each call is bounded by timeout.
func NewRepository(store catalog.Store, timeout time.Duration) Repository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &repository{
		store:    store,
		activity: NewActivityFetcher(&timeoutStore{Store: store, timeout: timeout}),
		timeout:  timeout,
	}
}

func (r *repository) execute(ctx context.Context, q *catalog.Query) ([]catalog.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.store.Execute(ctx, q)
}

func (r *repository) RecentActivity(ctx context.Context, userID, token string, mode Mode, limit int) []ActivityEvent {
	return r.activity.Fetch(ctx, userID, token, mode, limit)
}

func (r *repository) ProductMeta(ctx context.Context, ids []string) (map[string]ProductMeta, error) {
	out := map[string]ProductMeta{}
	if len(ids) == 0 {
		return out, nil
	}
	if len(ids) > MetadataLookupLimit {
		ids = ids[:MetadataLookupLimit]
	}

	rows, err := r.execute(ctx, catalog.From(productsTable).
		Select("id", "category_id", "brand", "tags").
		In("id", ids))
	if err != nil {
		return nil, fmt.Errorf("product metadata: %w", err)
	}

	for _, row := range rows {
		if m, ok := metaFromRow(row); ok {
			out[m.ID] = m
		}
	}
	return out, nil
}

func (r *repository) Trending(ctx context.Context, limit int) (*Trending, error) {
	rows, err := r.execute(ctx, catalog.From(trendingTable).
		Select("product_id", "view_count").
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}

	t := &Trending{Counts: map[string]int64{}}
	for _, row := range rows {
		id, ok := row.String("product_id")
		if !ok || !IsValidID(id) {
			continue
		}
		if _, dup := t.Counts[id]; !dup {
			t.IDs = append(t.IDs, id)
		}
		views, _ := row.Int("view_count")
		t.Counts[id] = views
	}
	return t, nil
}

func (r *repository) SimilarProducts(ctx context.Context, seeds []string, limit int) ([]SimilarityRow, error) {
	if len(seeds) == 0 {
		return []SimilarityRow{}, nil
	}

	rows, err := r.execute(ctx, catalog.From(similaritiesTable).
		Select("product_id", "similar_product_id", "common_users", "similarity").
		In("product_id", seeds).
		Order("similarity", true).
		Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("similar products: %w", err)
	}

	out := make([]SimilarityRow, 0, len(rows))
	for _, row := range rows {
		if sim, ok := similarityFromRow(row); ok {
			out = append(out, sim)
		}
	}
	return out, nil
}

func (r *repository) Products(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	q := catalog.From(productsTable).Select("*").Eq("is_active", true)
	if filter.Column != "" {
		q.In(filter.Column, filter.Values)
	}
	for _, o := range filter.Orders {
		q.Order(o.Column, o.Desc)
	}
	q.Limit(filter.Limit)

	rows, err := r.execute(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]*Product, 0, len(rows))
	for _, row := range rows {
		if p, ok := productFromRow(row); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *repository) TopProducts(ctx context.Context, limit int) ([]catalog.Row, error) {
	return r.execute(ctx, catalog.From(productsTable).
		Select(topProductColumns...).
		Eq("is_active", true).
		Order("rating", true).
		Limit(limit))
}

// timeoutStore bounds every Execute, including the ones made through WithToken copies
type timeoutStore struct {
	catalog.Store
	timeout time.Duration
}

func (s *timeoutStore) Execute(ctx context.Context, q *catalog.Query) ([]catalog.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Execute(ctx, q)
}

func (s *timeoutStore) WithToken(token string) catalog.Store {
	return &timeoutStore{Store: s.Store.WithToken(token), timeout: s.timeout}
}
