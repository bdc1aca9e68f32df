// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/faycalhabibahmatalbachar/gba/internal/common/utils"
)

// Catalog backends
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

var defaultCORSOrigins = []string{
	"http://localhost:4074",
	"https://gba-vc4s.vercel.app",
	"https://gba-vc4s-jb288157k-gbas-projects-38754d42.vercel.app",
}

// Config holds all application configuration
type Config struct {
	// Server
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development staging production test"`

	// Supabase
	SupabaseURL            string `validate:"omitempty,url"`
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string

	// Catalog store
	CatalogBackend string `validate:"oneof=rest postgres"`
	DatabaseURL    string
	RedisURL       string

	// Upstream calls
	UpstreamTimeout     time.Duration `validate:"gt=0"`
	BreakerMaxRequests  int           `validate:"min=1"`
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration `validate:"gt=0"`
	BreakerFailureRatio float64       `validate:"gt=0,lte=1"`
	BreakerMinRequests  int           `validate:"min=1"`

	// HTTP
	CORSAllowOrigins []string
	RateLimitPerMin  int `validate:"min=0"`

	// Per-shopper quota on /v1/recommendations, backed by Redis
	RecommendationQuota       int `validate:"min=0"`
	RecommendationQuotaWindow time.Duration

	// Logging
	LogLevel  string
	LogFormat string `validate:"oneof=json console"`
	LogCaller bool
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),

		CatalogBackend: getEnv("CATALOG_BACKEND", BackendREST),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),

		UpstreamTimeout:     getEnvDuration("UPSTREAM_TIMEOUT", "10s"),
		BreakerMaxRequests:  getEnvInt("BREAKER_MAX_REQUESTS", 3),
		BreakerInterval:     getEnvDuration("BREAKER_INTERVAL", "1m"),
		BreakerTimeout:      getEnvDuration("BREAKER_TIMEOUT", "30s"),
		BreakerFailureRatio: getEnvFloat("BREAKER_FAILURE_RATIO", 0.6),
		BreakerMinRequests:  getEnvInt("BREAKER_MIN_REQUESTS", 10),

		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", defaultCORSOrigins),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_REQUESTS", 120),

		RecommendationQuota:       getEnvInt("RECOMMENDATION_QUOTA", 0),
		RecommendationQuotaWindow: getEnvDuration("RECOMMENDATION_QUOTA_WINDOW", "1m"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogCaller: getEnvBool("LOG_CALLER", false),
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}

	if c.CatalogBackend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when CATALOG_BACKEND=postgres")
	}

	if c.RecommendationQuota > 0 {
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RECOMMENDATION_QUOTA is set")
		}
		if c.RecommendationQuotaWindow <= 0 {
			return fmt.Errorf("RECOMMENDATION_QUOTA_WINDOW must be positive")
		}
	}

	if c.IsProduction() && len(c.CORSAllowOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOW_ORIGINS must not be empty in production")
	}

	return nil
}

// APIKey is the key sent as the PostgREST/GoTrue `apikey` header.
// The anon key wins so shopper calls stay inside row-level security.
func (c *Config) APIKey() string {
	if c.SupabaseAnonKey != "" {
		return c.SupabaseAnonKey
	}
	return c.SupabaseServiceRoleKey
}

// StoreKey is the key the catalog client authenticates with
func (c *Config) StoreKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabaseAnonKey
}

// SupabaseConfigured reports whether the REST catalog and auth endpoints are reachable
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.APIKey() != ""
}

// HasElevatedAccess reports whether service-level reads (trending, co-occurrence) are allowed
func (c *Config) HasElevatedAccess() bool {
	if c.CatalogBackend == BackendPostgres {
		return c.DatabaseURL != ""
	}
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadDotEnv loads `.env` from dir and then from its parent.
// A variable is only set when it is missing or blank in the environment.
func LoadDotEnv(dir string) []string {
	var loaded []string
	for _, p := range []string{filepath.Join(dir, ".env"), filepath.Join(filepath.Dir(dir), ".env")} {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(p)
		if err != nil {
			continue
		}
		for key, value := range values {
			if strings.TrimSpace(os.Getenv(key)) == "" {
				os.Setenv(key, value)
			}
		}
		loaded = append(loaded, p)
	}
	return loaded
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := getEnv(key, ""); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
