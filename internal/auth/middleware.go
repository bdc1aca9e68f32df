// internal/auth/middleware.go

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/faycalhabibahmatalbachar/gba/internal/common/utils"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
)

// Messages returned to clients
const (
	msgMissingToken  = "Missing bearer token"
	msgInvalidToken  = "Invalid token"
	msgNotConfigured = "Supabase auth not configured (set SUPABASE_URL and SUPABASE_ANON_KEY)"
	msgUnavailable   = "Auth provider unavailable"
)

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

// Middleware provides authentication middleware
type Middleware struct {
	provider Provider
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(provider Provider) *Middleware {
	return &Middleware{provider: provider}
}

// Authenticate rejects requests without a valid Supabase access token and
// stores the user and the raw token in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractToken(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, msgMissingToken)
			return
		}

		user, err := m.provider.Verify(r.Context(), token)
		if err != nil {
			status, msg := errorStatus(err)
			if status >= http.StatusInternalServerError {
				logging.Ctx(r.Context()).Error().Err(err).Msg("token verification failed")
			}
			utils.RespondWithError(w, status, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, token)))
	})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidToken
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, msgNotConfigured
	case errors.Is(err, ErrProviderUnavailable):
		return http.StatusBadGateway, msgUnavailable
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// ExtractToken returns the credential of a "Bearer <token>" header.
// The scheme is matched case-insensitively.
func ExtractToken(header string) (string, error) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// WithUser attaches an authenticated user and their token to ctx
func WithUser(ctx context.Context, user *User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, tokenKey, token)
}

// UserFromContext returns the user stored by Authenticate
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok && user != nil
}

// TokenFromContext returns the raw access token stored by Authenticate
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}
