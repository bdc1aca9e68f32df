package recommendations

import (
	"fmt"
	"time"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// pid returns a deterministic product UUID
func pid(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

// cid returns a deterministic category UUID
func cid(n int) string {
	return fmt.Sprintf("c0000000-0000-4000-8000-%012d", n)
}

const shopperID = "6f1c2a8e-3b1d-4f4e-9a55-0b7c1c9d2e11"

func activityRow(id string, action ActionType, at time.Time) catalog.Row {
	return catalog.Row{
		"user_id":     shopperID,
		"entity_id":   id,
		"entity_type": "product",
		"action_type": string(action),
		"created_at":  at.Format(time.RFC3339),
	}
}

type productOpt func(catalog.Row)

func productRow(id string, opts ...productOpt) catalog.Row {
	row := catalog.Row{
		"id":             id,
		"name":           "Product " + id[len(id)-3:],
		"price":          10.0,
		"quantity":       float64(5),
		"track_quantity": true,
		"rating":         3.0,
		"reviews_count":  float64(0),
		"is_active":      true,
		"is_featured":    false,
		"tags":           []any{},
	}
	for _, opt := range opts {
		opt(row)
	}
	return row
}

func withCategory(c string) productOpt { return func(r catalog.Row) { r["category_id"] = c } }
func withBrand(b string) productOpt    { return func(r catalog.Row) { r["brand"] = b } }
func withRating(v float64) productOpt  { return func(r catalog.Row) { r["rating"] = v } }
func withReviews(n int) productOpt     { return func(r catalog.Row) { r["reviews_count"] = float64(n) } }
func withQuantity(q any) productOpt    { return func(r catalog.Row) { r["quantity"] = q } }
func inactive() productOpt             { return func(r catalog.Row) { r["is_active"] = false } }
func withTags(tags ...string) productOpt {
	return func(r catalog.Row) {
		list := make([]any, len(tags))
		for i, t := range tags {
			list[i] = t
		}
		r["tags"] = list
	}
}
