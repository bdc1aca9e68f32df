// internal/catalog/row.go
// Loosely typed result rows. Only boundary mappers should read these.

package catalog

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Row is one record keyed by column name
type Row map[string]any

// Has reports whether key is present with a non-null value
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns a string column. Non-string scalars are formatted.
func (r Row) String(key string) (string, bool) {
	switch v := r[key].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Float returns a numeric column, parsing numeric strings
func (r Row) Float(key string) (float64, bool) {
	return toFloat(r[key])
}

// Int returns an integral column. Fractional numbers are truncated.
func (r Row) Int(key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
		return 0, false
	}
	f, ok := toFloat(r[key])
	return int64(f), ok
}

// Bool returns a boolean column
func (r Row) Bool(key string) (bool, bool) {
	switch v := r[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

// Strings returns a list column with every element formatted as a string
func (r Row) Strings(key string) ([]string, bool) {
	switch v := r[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	}
	return nil, false
}

// List returns a list column untouched
func (r Row) List(key string) ([]any, bool) {
	switch v := r[key].(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// Map returns an object column
func (r Row) Map(key string) (map[string]any, bool) {
	v, ok := r[key].(map[string]any)
	return v, ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
