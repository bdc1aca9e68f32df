// cmd/envcheck/main.go
// Prints which configuration keys are set, with secrets masked

package main

import (
	"fmt"
	"os"

	"github.com/faycalhabibahmatalbachar/gba/internal/config"
)

var keys = []struct {
	name   string
	secret bool
}{
	{"PORT", false},
	{"ENVIRONMENT", false},
	{"SUPABASE_URL", false},
	{"SUPABASE_ANON_KEY", true},
	{"SUPABASE_SERVICE_ROLE_KEY", true},
	{"SUPABASE_JWT_SECRET", true},
	{"CATALOG_BACKEND", false},
	{"DATABASE_URL", true},
	{"REDIS_URL", true},
	{"CORS_ALLOW_ORIGINS", false},
	{"RECOMMENDATION_QUOTA", false},
}

func main() {
	cwd, _ := os.Getwd()
	for _, p := range config.LoadDotEnv(cwd) {
		fmt.Printf("loaded %s\n", p)
	}

	for _, k := range keys {
		value := os.Getenv(k.name)
		switch {
		case value == "":
			fmt.Printf("%-28s missing\n", k.name)
		case k.secret:
			fmt.Printf("%-28s set (%s)\n", k.name, mask(value))
		default:
			fmt.Printf("%-28s %s\n", k.name, value)
		}
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("\ninvalid configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nsupabase configured: %t\nelevated access: %t\n", cfg.SupabaseConfigured(), cfg.HasElevatedAccess())
}

// mask keeps the first and last four characters of long values
func mask(v string) string {
	if len(v) <= 12 {
		return "****"
	}
	return v[:4] + "****" + v[len(v)-4:]
}
