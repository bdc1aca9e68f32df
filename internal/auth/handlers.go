// internal/auth/handlers.go

package auth

import (
	"net/http"

	"github.com/faycalhabibahmatalbachar/gba/internal/common/utils"
)

// Handler holds dependencies for auth endpoints
type Handler struct{}

// NewHandler creates a new auth handler
func NewHandler() *Handler {
	return &Handler{}
}

// Me echoes the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, msgMissingToken)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user)
}
