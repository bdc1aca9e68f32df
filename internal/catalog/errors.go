// internal/catalog/errors.go

package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured     = errors.New("catalog store not configured")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrBreakerOpen       = errors.New("catalog store unavailable (circuit open)")
)

// StatusError is returned when the REST endpoint answers with a non-200 status
type StatusError struct {
	Table  string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog %s: status %d: %s", e.Table, e.Status, e.Body)
}

// ClientError reports whether the request itself was rejected (bad column, bad filter)
// as opposed to the upstream being unhealthy.
func (e *StatusError) ClientError() bool {
	return e.Status >= 400 && e.Status < 500
}
