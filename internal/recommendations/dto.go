// internal/recommendations/dto.go

package recommendations

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
)

var errLimitNotInteger = errors.New("limit must be an integer")

// TopProductsResponse is the body of GET /v1/products/top
type TopProductsResponse struct {
	Items []catalog.Row `json:"items"`
}

// parseLimit reads ?limit=, defaulting and clamping to [1, 50]
func parseLimit(query url.Values) (int, error) {
	raw := strings.TrimSpace(query.Get("limit"))
	if raw == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errLimitNotInteger
	}
	return ClampLimit(n), nil
}
