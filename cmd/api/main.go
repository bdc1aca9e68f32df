// cmd/api/main.go
// Main entry point for the recommendation API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faycalhabibahmatalbachar/gba/internal/auth"
	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
	"github.com/faycalhabibahmatalbachar/gba/internal/common/database"
	"github.com/faycalhabibahmatalbachar/gba/internal/common/utils"
	"github.com/faycalhabibahmatalbachar/gba/internal/config"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
	"github.com/faycalhabibahmatalbachar/gba/internal/ratelimit"
	"github.com/faycalhabibahmatalbachar/gba/internal/recommendations"
)

func main() {
	// 1. Environment and configuration
	cwd, _ := os.Getwd()
	envFiles := config.LoadDotEnv(cwd)

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Caller: cfg.LogCaller})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Info().
		Strs("env_files", envFiles).
		Str("environment", cfg.Environment).
		Str("catalog_backend", cfg.CatalogBackend).
		Bool("supabase_configured", cfg.SupabaseConfigured()).
		Bool("elevated_access", cfg.HasElevatedAccess()).
		Msg("configuration loaded")

	ctx := context.Background()

	// 2. Catalog store
	store, closeStore := newCatalogStore(ctx, cfg)
	defer closeStore()

	var repo recommendations.Repository
	if store != nil {
		logging.Info().Str("backend", store.Backend()).Msg("catalog store ready")
		repo = recommendations.NewRepository(store, cfg.UpstreamTimeout)
	}
	recService := recommendations.NewService(repo, recommendations.Options{Elevated: cfg.HasElevatedAccess()})
	recHandler := recommendations.NewHandler(recService)

	// 3. Auth
	authMiddleware := auth.NewMiddleware(auth.NewProvider(cfg))
	authHandler := auth.NewHandler()

	// 4. Optional per-shopper quota
	var quota func(http.Handler) http.Handler
	if cfg.RecommendationQuota > 0 {
		redisClient, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		quota = ratelimit.NewQuota(redisClient, cfg.RecommendationQuota, cfg.RecommendationQuotaWindow).Middleware
		logging.Info().Int("limit", cfg.RecommendationQuota).Dur("window", cfg.RecommendationQuotaWindow).Msg("recommendation quota enabled")
	}

	// 5. Routes
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(loggingMiddleware)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimitPerMin > 0 {
		router.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
	}

	router.Get("/health", healthCheck)
	router.Handle("/metrics", promhttp.Handler())
	auth.RegisterRoutes(router, authHandler, authMiddleware)
	recommendations.RegisterRoutes(router, recHandler, authMiddleware, quota)

	// 6. Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	logging.Info().Msg("server exited gracefully")
}

// newCatalogStore returns nil when the REST backend has no Supabase credentials;
// the service then answers "Supabase not configured".
func newCatalogStore(ctx context.Context, cfg *config.Config) (catalog.Store, func()) {
	noop := func() {}

	if cfg.CatalogBackend == config.BackendPostgres {
		db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to catalog database")
		}
		return catalog.NewPostgresStore(db, cfg.UpstreamTimeout), func() { db.Close() }
	}

	store, err := catalog.NewRESTStore(catalog.RESTConfig{
		BaseURL: cfg.SupabaseURL,
		APIKey:  cfg.APIKey(),
		Key:     cfg.StoreKey(),
		Timeout: cfg.UpstreamTimeout,
		Breaker: catalog.BreakerConfig{
			Name:         catalog.DefaultBreakerName,
			MaxRequests:  uint32(cfg.BreakerMaxRequests),
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
			MinRequests:  uint32(cfg.BreakerMinRequests),
		},
	})
	if errors.Is(err, catalog.ErrNotConfigured) {
		logging.Warn().Msg("SUPABASE_URL or keys missing; catalog endpoints will report not configured")
		return nil, noop
	}
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create catalog client")
	}
	return store, noop
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request")
	})
}
