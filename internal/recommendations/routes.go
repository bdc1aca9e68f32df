package recommendations

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faycalhabibahmatalbachar/gba/internal/auth"
)

// RegisterRoutes mounts the catalog endpoints. quota, when non-nil, runs after authentication.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware, quota func(http.Handler) http.Handler) {
	r.Get("/v1/products/top", handler.GetTopProducts)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		if quota != nil {
			r.Use(quota)
		}

		r.Get("/v1/recommendations", handler.GetRecommendations)
	})
}
