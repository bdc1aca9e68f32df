package recommendations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

func TestInStock(t *testing.T) {
	tests := []struct {
		name string
		row  catalog.Row
		want bool
	}{
		{"tracked with stock", catalog.Row{"track_quantity": true, "quantity": float64(2)}, true},
		{"tracked empty", catalog.Row{"track_quantity": true, "quantity": float64(0)}, false},
		{"tracked missing quantity", catalog.Row{"track_quantity": true}, false},
		{"tracked null quantity", catalog.Row{"track_quantity": true, "quantity": nil}, false},
		{"tracking defaults on", catalog.Row{"quantity": float64(0)}, false},
		{"untracked", catalog.Row{"track_quantity": false, "quantity": float64(0)}, true},
		{"unreadable quantity", catalog.Row{"quantity": "lots"}, true},
		{"numeric string", catalog.Row{"quantity": "4"}, true},
		{"blank string", catalog.Row{"quantity": " "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inStock(tt.row))
		})
	}
}

func TestProductFromRowDefaults(t *testing.T) {
	p, ok := productFromRow(catalog.Row{"id": pid(1)})
	require.True(t, ok)

	v := p.View()
	assert.Equal(t, "", v.Name)
	assert.Zero(t, v.Price)
	assert.Nil(t, v.CompareAtPrice)
	assert.True(t, v.TrackQuantity)
	assert.True(t, v.IsActive)
	assert.False(t, v.IsFeatured)
	assert.Equal(t, []any{}, v.Images)
	assert.Equal(t, map[string]any{}, v.Specifications)
	assert.Equal(t, []any{}, v.Tags)
	assert.Nil(t, v.CategoryID)
	assert.False(t, p.InStock)
}

func TestProductFromRowFull(t *testing.T) {
	row := catalog.Row{
		"id":               pid(1),
		"name":             "Lamp",
		"slug":             "lamp",
		"price":            "19.5",
		"compare_at_price": 25.0,
		"quantity":         float64(3),
		"track_quantity":   true,
		"category_id":      cid(1),
		"brand":            " Acme ",
		"main_image":       "https://cdn.example/lamp.png",
		"images":           []any{"a.png"},
		"specifications":   map[string]any{"watts": 40.0},
		"tags":             []any{" warm ", "", "desk"},
		"rating":           4.5,
		"reviews_count":    float64(12),
		"is_featured":      true,
		"created_at":       "2026-01-01T00:00:00Z",
	}

	p, ok := productFromRow(row)
	require.True(t, ok)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, 19.5, p.Price)
	require.NotNil(t, p.CompareAtPrice)
	assert.Equal(t, 25.0, *p.CompareAtPrice)
	assert.Equal(t, " Acme ", *p.Brand, "candidate brand is kept verbatim")
	assert.Equal(t, "https://cdn.example/lamp.png", *p.MainImage)
	assert.Equal(t, []string{"warm", "desk"}, p.ScoringTags)
	assert.Equal(t, []any{" warm ", "", "desk"}, p.Tags)
	assert.Equal(t, int64(12), p.ReviewsCount)
	assert.True(t, p.IsFeatured)
	assert.True(t, p.InStock)
	assert.Equal(t, "2026-01-01T00:00:00Z", *p.CreatedAt)
}

func TestProductFromRowRequiresID(t *testing.T) {
	_, ok := productFromRow(catalog.Row{"name": "orphan"})
	assert.False(t, ok)
	_, ok = productFromRow(catalog.Row{"id": ""})
	assert.False(t, ok)
}

func TestMetaFromRow(t *testing.T) {
	m, ok := metaFromRow(catalog.Row{
		"id":          pid(1),
		"category_id": "electronics",
		"brand":       "   ",
		"tags":        []any{" a ", "", 3.0},
	})
	require.True(t, ok)
	assert.Empty(t, m.CategoryID, "non-UUID categories are dropped")
	assert.Empty(t, m.Brand)
	assert.Equal(t, []string{"a", "3"}, m.Tags)

	_, ok = metaFromRow(catalog.Row{"id": "legacy-42"})
	assert.False(t, ok)
}

func TestSimilarityFromRow(t *testing.T) {
	s, ok := similarityFromRow(catalog.Row{
		"product_id":         pid(1),
		"similar_product_id": pid(2),
		"common_users":       float64(4),
		"similarity":         "0.75",
	})
	require.True(t, ok)
	assert.Equal(t, SimilarityRow{Seed: pid(1), Candidate: pid(2), CommonUsers: 4, Similarity: 0.75}, s)

	_, ok = similarityFromRow(catalog.Row{"product_id": pid(1), "similar_product_id": "x"})
	assert.False(t, ok)
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(pid(1)))
	assert.True(t, IsValidID("6F1C2A8E-3B1D-4F4E-9A55-0B7C1C9D2E11"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("123"))
}
