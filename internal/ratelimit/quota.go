// internal/ratelimit/quota.go
// Per-shopper fixed-window quota backed by Redis

package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/faycalhabibahmatalbachar/gba/internal/auth"
	"github.com/faycalhabibahmatalbachar/gba/internal/common/utils"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
)

const keyPrefix = "quota:recommendations:"

var quotaDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ratelimit_quota_decisions_total",
		Help: "Per-shopper quota decisions",
	},
	[]string{"decision"},
)

// Quota allows Limit requests per Window per authenticated user
type Quota struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewQuota creates a Redis backed quota
func NewQuota(client *redis.Client, limit int, window time.Duration) *Quota {
	return &Quota{client: client, limit: limit, window: window}
}

// Allow counts one request for userID and reports whether it is within quota,
// along with the remaining allowance.
func (q *Quota) Allow(ctx context.Context, userID string) (bool, int, error) {
	key := keyPrefix + userID

	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("quota incr: %w", err)
	}
	if count == 1 {
		if err := q.client.Expire(ctx, key, q.window).Err(); err != nil {
			return false, 0, fmt.Errorf("quota expire: %w", err)
		}
	}

	remaining := q.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return int(count) <= q.limit, remaining, nil
}

// Middleware enforces the quota. It must run after auth.Middleware.Authenticate.
// Redis failures let the request through.
func (q *Quota) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, err := q.Allow(r.Context(), user.ID)
		if err != nil {
			quotaDecisions.WithLabelValues("error").Inc()
			logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", user.ID).Msg("quota check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(q.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			quotaDecisions.WithLabelValues("rejected").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(q.window.Seconds())))
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many recommendation requests")
			return
		}

		quotaDecisions.WithLabelValues("allowed").Inc()
		next.ServeHTTP(w, r)
	})
}
