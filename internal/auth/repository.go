// internal/auth/repository.go
// Supabase GoTrue lookups: the source of truth for who owns a token

package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Provider resolves an access token to a user
type Provider interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// SupabaseProvider asks GoTrue who owns a token
type SupabaseProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSupabaseProvider creates a GoTrue backed provider
func NewSupabaseProvider(baseURL, apiKey string, timeout time.Duration) *SupabaseProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Verify implements Provider
func (p *SupabaseProvider) Verify(ctx context.Context, token string) (*User, error) {
	if p.baseURL == "" || p.apiKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, ErrInvalidToken
	}

	var body gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, ErrInvalidToken
	}

	id := idString(body.ID)
	if id == "" {
		return nil, ErrInvalidToken
	}
	return &User{ID: id, Email: body.Email}, nil
}

func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}
