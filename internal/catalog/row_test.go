package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRowAccessors(t *testing.T) {
	row := Row{
		"id":             "p1",
		"price":          "19.90",
		"rating":         4.5,
		"reviews_count":  float64(12),
		"quantity":       int64(3),
		"track_quantity": true,
		"tags":           []any{"summer", 7, nil},
		"specifications": map[string]any{"color": "red"},
		"category_id":    nil,
	}

	s, ok := row.String("id")
	assert.True(t, ok)
	assert.Equal(t, "p1", s)

	f, ok := row.Float("price")
	assert.True(t, ok)
	assert.InDelta(t, 19.9, f, 1e-9)

	n, ok := row.Int("reviews_count")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	n, ok = row.Int("quantity")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	b, ok := row.Bool("track_quantity")
	assert.True(t, ok)
	assert.True(t, b)

	tags, ok := row.Strings("tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"summer", "7"}, tags)

	specs, ok := row.Map("specifications")
	assert.True(t, ok)
	assert.Equal(t, "red", specs["color"])

	assert.False(t, row.Has("category_id"))
	assert.False(t, row.Has("missing"))
	_, ok = row.String("category_id")
	assert.False(t, ok)
}

func TestRowIntUnparsable(t *testing.T) {
	row := Row{"quantity": "lots"}
	assert.True(t, row.Has("quantity"))
	_, ok := row.Int("quantity")
	assert.False(t, ok)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 12.5, normalizeValue("NUMERIC", []byte("12.5")))
	assert.Equal(t, []string{"a", "b c"}, normalizeValue("_TEXT", []byte(`{a,"b c"}`)))
	assert.Equal(t, map[string]any{"k": "v"}, normalizeValue("JSONB", []byte(`{"k":"v"}`)))
	assert.Equal(t, "6f1c2a8e-3b1d-4f4e-9a55-0b7c1c9d2e11", normalizeValue("UUID", []byte("6f1c2a8e-3b1d-4f4e-9a55-0b7c1c9d2e11")))
	assert.Equal(t, int64(4), normalizeValue("INT4", int64(4)))

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01T12:00:00Z", normalizeValue("TIMESTAMPTZ", ts))
}
