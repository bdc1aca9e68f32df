// internal/recommendations/handlers.go

package recommendations

import (
	"errors"
	"net/http"

	"github.com/faycalhabibahmatalbachar/gba/internal/auth"
	"github.com/faycalhabibahmatalbachar/gba/internal/catalog"
	"github.com/faycalhabibahmatalbachar/gba/internal/common/utils"
	"github.com/faycalhabibahmatalbachar/gba/internal/logging"
)

const (
	msgNotConfigured = "Supabase not configured"
	msgInternal      = "Internal server error"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetRecommendations serves GET /v1/recommendations?limit=N&mode=full|light
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}
	token, _ := auth.TokenFromContext(r.Context())

	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "mode must be one of: full, light")
		return
	}

	result, err := h.service.Recommend(r.Context(), Request{
		UserID: user.ID,
		Token:  token,
		Limit:  limit,
		Mode:   mode,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// GetTopProducts serves GET /v1/products/top?limit=N
func (h *Handler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []catalog.Row{}
	}

	utils.RespondWithJSON(w, http.StatusOK, TopProductsResponse{Items: rows})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotConfigured) {
		utils.RespondWithError(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}
	log := logging.Ctx(r.Context())
	if IsUpstream(err) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("catalog fetch failed")
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	utils.RespondWithError(w, http.StatusInternalServerError, msgInternal)
}
