// internal/recommendations/service.go
// Request orchestration: events -> signals -> candidates -> ranked result

package recommendations

import (
	"context"
	"errors"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
)

// Result limits
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// ClampLimit bounds a requested result size to [1, 50]
func ClampLimit(limit int) int {
	return clamp(limit, 1, MaxLimit)
}

// Request is one recommendation call for an authenticated shopper
type Request struct {
	UserID string
	Token  string
	Limit  int
	Mode   Mode
}

// Service defines the recommendation operations
type Service interface {
	Recommend(ctx context.Context, req Request) (*Result, error)
	TopProducts(ctx context.Context, limit int) ([]catalog.Row, error)
}

// Options configures the service
type Options struct {
	// Elevated enables the service-level reads: trending and co-occurrence
	Elevated bool
	// Now defaults to time.Now
	Now func() time.Time
}

type service struct {
	repo       Repository
	candidates *CandidateGenerator
	elevated   bool
	now        func() time.Time
}

// NewService creates the recommendation service. A nil repo yields a service
// that reports ErrNotConfigured.
func NewService(repo Repository, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &service{repo: repo, elevated: opts.Elevated, now: opts.Now}
	if repo != nil {
		s.candidates = NewCandidateGenerator(repo)
	}
	return s
}

func (s *service) TopProducts(ctx context.Context, limit int) ([]catalog.Row, error) {
	if s.repo == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.repo.TopProducts(ctx, ClampLimit(limit))
	if err != nil {
		return nil, &UpstreamError{Step: "top_products", Err: err}
	}
	return rows, nil
}

func (s *service) Recommend(ctx context.Context, req Request) (*Result, error) {
	if s.repo == nil {
		return nil, ErrNotConfigured
	}
	if req.Mode == "" {
		req.Mode = ModeFull
	}

	start := time.Now()
	result, err := s.recommend(ctx, req)
	responseTime.WithLabelValues(string(req.Mode)).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(string(req.Mode), outcome).Inc()
	return result, err
}

// externalSignals are read only with elevated access
type externalSignals struct {
	trending     *Trending
	cooccurrence *AffinityMap
}

func (s *service) recommend(ctx context.Context, req Request) (*Result, error) {
	limit := ClampLimit(req.Limit)
	now := s.now().UTC()
	log := logging.Ctx(ctx)

	events := s.repo.RecentActivity(ctx, req.UserID, req.Token, req.Mode, 0)
	interacted := InteractedIDs(events)
	seen := mapset.NewThreadUnsafeSet(interacted...)

	meta, err := s.repo.ProductMeta(ctx, interacted)
	if err != nil {
		degraded(ctx, "metadata", err)
		meta = map[string]ProductMeta{}
	}

	signals := Aggregate(events, meta, now)
	seeds := signals.Seeds()

	ext := externalSignals{trending: &Trending{Counts: map[string]int64{}}, cooccurrence: NewAffinityMap()}
	if req.Mode == ModeFull && s.elevated {
		ext = s.external(ctx, limit, seeds, signals.Interest, seen)
	}

	pool, err := s.candidates.Generate(ctx, CandidatePlan{
		Limit:        limit,
		Cooccurrence: ext.cooccurrence,
		Categories:   signals.TopCategories(),
		Brands:       signals.TopBrands(),
		Trending:     ext.trending,
	})
	if err != nil {
		return nil, err
	}

	ranker := NewRanker(signals, Boosts{Trending: ext.trending, Cooccurrence: ext.cooccurrence})
	ranked := ranker.Rank(pool.Products, seen, limit)

	source := TierPopular
	if len(pool.Sources) > 0 {
		source = strings.Join(pool.Sources, "+")
	}

	seedCount := len(seeds)
	if req.Mode == ModeLight {
		seedCount = 0
	}

	result := &Result{
		UserID: req.UserID,
		Items: lo.Map(ranked, func(p *Product, _ int) ProductView {
			return p.View()
		}),
		Meta: Meta{
			Algorithm:               req.Mode.Algorithm(),
			Source:                  source,
			RequestID:               uuid.NewString(),
			GeneratedAt:             now.Format(time.RFC3339Nano),
			TopCategories:           signals.TopCategories(),
			TopBrands:               signals.TopBrands(),
			TopTags:                 lo.Slice(signals.TopTags(), 0, MetaTagsK),
			SeenCount:               seen.Cardinality(),
			CooccurrenceSeedCount:   seedCount,
			CooccurrenceScoredCount: ext.cooccurrence.Len(),
			Mode:                    req.Mode,
		},
	}

	log.Info().
		Str("user_id", req.UserID).
		Str("mode", string(req.Mode)).
		Str("source", source).
		Int("events", len(events)).
		Int("candidates", len(pool.Products)).
		Int("items", len(result.Items)).
		Msg("recommendations computed")

	return result, nil
}

// external reads trending and co-occurrence concurrently; either failing leaves it empty
func (s *service) external(ctx context.Context, limit int, seeds []string, interest *AffinityMap, seen mapset.Set[string]) externalSignals {
	ext := externalSignals{trending: &Trending{Counts: map[string]int64{}}, cooccurrence: NewAffinityMap()}
	var similar []SimilarityRow

	var eg errgroup.Group
	eg.Go(func() error {
		t, err := s.repo.Trending(ctx, FetchLimit(limit))
		if err != nil {
			degraded(ctx, "trending", err)
			return nil
		}
		ext.trending = t
		return nil
	})
	if len(seeds) > 0 {
		eg.Go(func() error {
			rows, err := s.repo.SimilarProducts(ctx, seeds, SimilarityRowLimit)
			if err != nil {
				degraded(ctx, TierCooccurrence, err)
				return nil
			}
			similar = rows
			return nil
		})
	}
	eg.Wait()

	ext.cooccurrence = ResolveCooccurrence(similar, interest, seen)
	return ext
}

// IsUpstream reports whether err came from a mandatory catalog fetch
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
