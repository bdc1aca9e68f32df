// internal/catalog/rest.go
// PostgREST client for the Supabase catalog

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BackendREST names the PostgREST backend in metrics
const BackendREST = "rest"

const maxErrorBody = 512

// RESTConfig configures a RESTStore
type RESTConfig struct {
	BaseURL string // e.g. https://xyz.supabase.co
	APIKey  string // sent as the apikey header
	Key     string // default bearer credential when no user token is attached
	Timeout time.Duration
	Breaker BreakerConfig
}

// RESTStore reads the catalog through PostgREST
type RESTStore struct {
	baseURL string
	apiKey  string
	bearer  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]Row]
}

// NewRESTStore creates a PostgREST backed store
func NewRESTStore(cfg RESTConfig) (*RESTStore, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Key == "" {
		cfg.Key = cfg.APIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = DefaultBreakerConfig(DefaultBreakerName)
	}

	return &RESTStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		bearer:  cfg.Key,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: newBreaker(cfg.Breaker),
	}, nil
}

// Backend implements Store
func (s *RESTStore) Backend() string { return BackendREST }

// WithToken returns a copy authenticating as the token holder. The breaker is shared.
func (s *RESTStore) WithToken(token string) Store {
	if token == "" {
		return s
	}
	cp := *s
	cp.bearer = token
	return &cp
}

// Execute implements Store
func (s *RESTStore) Execute(ctx context.Context, q *Query) ([]Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.matchesNothing() {
		return []Row{}, nil
	}

	start := time.Now()
	rows, err := s.breaker.Execute(func() ([]Row, error) {
		return s.fetch(ctx, q)
	})
	observe(s, q, start, err)
	if err != nil {
		return nil, breakerError(err)
	}
	return rows, nil
}

func (s *RESTStore) fetch(ctx context.Context, q *Query) ([]Row, error) {
	endpoint := s.baseURL + "/rest/v1/" + q.Table + "?" + encodeParams(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return nil, fmt.Errorf("catalog %s: %w", q.Table, ctxErr)
		}
		return nil, fmt.Errorf("catalog %s: %w", q.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Table: q.Table, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("catalog %s: unexpected body: %w", q.Table, err)
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// encodeParams renders q in PostgREST query-string syntax
func encodeParams(q *Query) url.Values {
	params := url.Values{}
	params.Set("select", q.selectList())

	for _, f := range q.Filters {
		switch f.Op {
		case OpEq:
			params.Add(f.Column, "eq."+formatValue(f.Values[0]))
		case OpIn:
			quoted := make([]string, len(f.Values))
			for i, v := range f.Values {
				quoted[i] = quoteValue(formatValue(v))
			}
			params.Add(f.Column, "in.("+strings.Join(quoted, ",")+")")
		}
	}

	if len(q.Orders) > 0 {
		terms := make([]string, len(q.Orders))
		for i, o := range q.Orders {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			terms[i] = o.Column + "." + dir
		}
		params.Set("order", strings.Join(terms, ","))
	}

	if q.Max > 0 {
		params.Set("limit", fmt.Sprint(q.Max))
	}
	return params
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// quoteValue wraps an IN list element in double quotes so commas and parentheses survive
func quoteValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
