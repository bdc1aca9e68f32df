// internal/catalog/store.go

package catalog

import "context"

// Store executes read queries against the catalog
type Store interface {
	Execute(ctx context.Context, q *Query) ([]Row, error)

	// WithToken returns a store that reads on behalf of the holder of an access token.
	// Backends without row-level security return themselves.
	WithToken(token string) Store

	// Backend names the implementation for logs and metrics
	Backend() string
}
