package server

import (
	"net/http"

	"github.com/terraconstructs/articles/internal/services/article"
)

// ArticleHandlers serves /api/articles.
type ArticleHandlers struct {
	articles *article.Service
}

// NewArticleHandlers creates the article handler set.
func NewArticleHandlers(articles *article.Service) *ArticleHandlers {
	return &ArticleHandlers{articles: articles}
}

// List handles GET /api/articles.
func (h *ArticleHandlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.articles.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/articles/{id}.
func (h *ArticleHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	a, err := h.articles.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ByAuthor handles GET /api/articles/authorship/{id}.
func (h *ArticleHandlers) ByAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := h.articles.ListByAuthor(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create handles POST /api/articles.
func (h *ArticleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload NewArticlePayload
	if err := decodeAndValidate(w, r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := h.articles.Create(r.Context(), payload.toDraft())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PATCH /api/articles/{id}.
func (h *ArticleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var payload UpdateArticlePayload
	if err := decodeAndValidate(w, r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := h.articles.Update(r.Context(), id, payload.toChanges())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/articles/{id}.
func (h *ArticleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.articles.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
