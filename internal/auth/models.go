// internal/auth/models.go
// Identity types shared by providers, middleware and handlers

package auth

import "errors"

// Authentication errors
var (
	ErrNotConfigured       = errors.New("supabase auth not configured")
	ErrMissingToken        = errors.New("missing bearer token")
	ErrInvalidToken        = errors.New("invalid token")
	ErrProviderUnavailable = errors.New("auth provider unavailable")
)

// User is the authenticated shopper
type User struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
}

// gotrueUser is the subset of the GoTrue /auth/v1/user body we read
type gotrueUser struct {
	ID    any     `json:"id"`
	Email *string `json:"email"`
}
