package server

import (
	"net/http"

	"github.com/terraconstructs/articles/internal/services/account"
)

// AuthHandlers serves the public registration and login endpoints.
type AuthHandlers struct {
	accounts *account.Service
}

// NewAuthHandlers creates the public auth handler set.
func NewAuthHandlers(accounts *account.Service) *AuthHandlers {
	return &AuthHandlers{accounts: accounts}
}

// Register handles POST /api/registration.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegistrationPayload
	if err := decodeAndValidate(w, r, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), payload.toRegistration())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Authenticate handles POST /api/auth.
func (h *AuthHandlers) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token})
}
