package server

import (
	"net/http"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/services/account"
)

// UserHandlers serves /api/users.
type UserHandlers struct {
	accounts *account.Service
}

// NewUserHandlers creates the user handler set.
func NewUserHandlers(accounts *account.Service) *UserHandlers {
	return &UserHandlers{accounts: accounts}
}

// List handles GET /api/users.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}.
func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AuthorsOfArticle handles GET /api/users/authorship/{id}.
func (h *UserHandlers) AuthorsOfArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	users, err := h.accounts.ListAuthorsOfArticle(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /api/users/admin.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload UserPayload
	if err := decodeAndValidate(w, r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.accounts.Create(r.Context(), payload.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PATCH /api/users/{id}.
func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	actor, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, r, auth.NewAuthenticationError(auth.ErrMissingToken))
		return
	}

	var payload UserPayload
	if err := decodeAndValidate(w, r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.accounts.Update(r.Context(), actor, id, payload.toInput())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
