package server

import (
	"net/http"

	"github.com/terraconstructs/articles/internal/services/review"
)

// ReviewHandlers serves /api/reviews.
type ReviewHandlers struct {
	reviews *review.Service
}

// NewReviewHandlers creates the review handler set.
func NewReviewHandlers(reviews *review.Service) *ReviewHandlers {
	return &ReviewHandlers{reviews: reviews}
}

// Get handles GET /api/reviews/{id}.
func (h *ReviewHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	rv, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

// ByArticle handles GET /api/reviews/articles/{id}.
func (h *ReviewHandlers) ByArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := h.reviews.ListByArticle(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ByAuthor handles GET /api/reviews/users/{id}.
func (h *ReviewHandlers) ByAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := h.reviews.ListByAuthor(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create handles POST /api/reviews.
func (h *ReviewHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload ReviewPayload
	if err := decodeAndValidate(w, r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	rv, err := h.reviews.Create(r.Context(), payload.toDraft())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

// Delete handles DELETE /api/reviews/{id}.
func (h *ReviewHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
