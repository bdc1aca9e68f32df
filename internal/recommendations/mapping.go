// internal/recommendations/mapping.go
// Row -> record mappers. Nothing past this file reads catalog.Row.

package recommendations

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

// IsValidID reports whether s parses as a UUID
func IsValidID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// parseTimestamp accepts RFC 3339 and falls back to dateparse in UTC
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t
	}
	if t, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return &t
	}
	return nil
}

// eventFromRow maps an activity row. The action column differs between schema variants.
func eventFromRow(row catalog.Row) (ActivityEvent, bool) {
	id, ok := row.String("entity_id")
	if !ok || id == "" {
		return ActivityEvent{}, false
	}

	action, _ := row.String("action_type")
	if action == "" {
		action, _ = row.String("activity_type")
	}

	evt := ActivityEvent{EntityID: id, Action: ActionType(action)}
	if raw, ok := row["created_at"].(string); ok {
		evt.CreatedAt = parseTimestamp(raw)
	}
	return evt, true
}

func metaFromRow(row catalog.Row) (ProductMeta, bool) {
	id, ok := row.String("id")
	if !ok || !IsValidID(id) {
		return ProductMeta{}, false
	}

	meta := ProductMeta{ID: id}
	if category, ok := row.String("category_id"); ok && IsValidID(category) {
		meta.CategoryID = category
	}
	if brand, ok := row.String("brand"); ok {
		meta.Brand = strings.TrimSpace(brand)
	}
	meta.Tags = cleanTags(row)
	return meta, true
}

func cleanTags(row catalog.Row) []string {
	raw, ok := row.Strings("tags")
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func similarityFromRow(row catalog.Row) (SimilarityRow, bool) {
	seed, ok1 := row.String("product_id")
	cand, ok2 := row.String("similar_product_id")
	if !ok1 || !ok2 || !IsValidID(seed) || !IsValidID(cand) {
		return SimilarityRow{}, false
	}
	sim, _ := row.Float("similarity")
	common, _ := row.Int("common_users")
	return SimilarityRow{Seed: seed, Candidate: cand, CommonUsers: common, Similarity: sim}, true
}

func optionalString(row catalog.Row, key string) *string {
	s, ok := row.String(key)
	if !ok {
		return nil
	}
	return &s
}

// truthy reads a loosely typed flag, using def when the column is null or absent
func truthy(row catalog.Row, key string, def bool) bool {
	if !row.Has(key) {
		return def
	}
	if b, ok := row.Bool(key); ok {
		return b
	}
	if f, ok := row.Float(key); ok {
		return f != 0
	}
	if s, ok := row.String(key); ok {
		return s != ""
	}
	return true
}

// inStock: untracked items are always in stock; tracked items need quantity > 0.
// A missing quantity counts as zero; an unreadable one counts as in stock.
func inStock(row catalog.Row) bool {
	if !truthy(row, "track_quantity", true) {
		return true
	}
	if !row.Has("quantity") {
		return false
	}
	if s, ok := row["quantity"].(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	q, ok := row.Int("quantity")
	if !ok {
		return true
	}
	return q > 0
}

// productFromRow maps a full products row. Rows without an id are dropped.
func productFromRow(row catalog.Row) (*Product, bool) {
	id, ok := row.String("id")
	if !ok || id == "" {
		return nil, false
	}

	p := &Product{
		ID:             id,
		Slug:           optionalString(row, "slug"),
		Description:    optionalString(row, "description"),
		SKU:            optionalString(row, "sku"),
		CategoryID:     optionalString(row, "category_id"),
		Brand:          optionalString(row, "brand"),
		MainImage:      optionalString(row, "main_image"),
		CreatedAt:      optionalString(row, "created_at"),
		UpdatedAt:      optionalString(row, "updated_at"),
		TrackQuantity:  truthy(row, "track_quantity", true),
		IsFeatured:     truthy(row, "is_featured", false),
		IsActive:       truthy(row, "is_active", true),
		Images:         []any{},
		Specifications: map[string]any{},
		Tags:           []any{},
		InStock:        inStock(row),
		ScoringTags:    cleanTags(row),
	}

	if name, ok := row.String("name"); ok {
		p.Name = name
	}
	p.Price, _ = row.Float("price")
	if row.Has("compare_at_price") {
		v, _ := row.Float("compare_at_price")
		p.CompareAtPrice = &v
	}
	p.Quantity, _ = row.Int("quantity")
	p.Rating, _ = row.Float("rating")
	p.ReviewsCount, _ = row.Int("reviews_count")

	if images, ok := row.List("images"); ok {
		p.Images = images
	}
	if specs, ok := row.Map("specifications"); ok {
		p.Specifications = specs
	}
	if tags, ok := row.List("tags"); ok {
		p.Tags = tags
	}
	return p, true
}
