package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/repository"
)

var testTokenConfig = auth.TokenConfig{
	Secret:   []byte("middleware-secret-middleware-secret"),
	Issuer:   "articles-service",
	Audience: "articles-clients",
	TTL:      time.Hour,
}

type fakeDirectory struct {
	users map[string]bool
	err   error
}

func (f *fakeDirectory) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.users[username], nil
}

type fakeAuthorship struct {
	mu      sync.Mutex
	authors map[int64][]int64
	calls   int
	err     error
}

func (f *fakeAuthorship) AuthorIDs(_ context.Context, articleID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	ids := f.authors[articleID]
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

type fakeReviews struct {
	mu      sync.Mutex
	reviews map[int64]*models.Review
	calls   int
	err     error
}

func (f *fakeReviews) Get(_ context.Context, id int64) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	review, ok := f.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return review, nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	decisions map[string]int
}

func (f *fakeRecorder) RecordGateDecision(gate, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decisions == nil {
		f.decisions = map[string]int{}
	}
	f.decisions[gate+"/"+outcome]++
}

func (f *fakeRecorder) count(gate, outcome string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decisions[gate+"/"+outcome]
}

// statusResponder mirrors the server's mapping closely enough for gate tests
// and keeps the last error for assertions.
type statusResponder struct {
	mu   sync.Mutex
	last error
}

func (s *statusResponder) Respond(w http.ResponseWriter, _ *http.Request, err error) {
	s.mu.Lock()
	s.last = err
	s.mu.Unlock()

	var (
		authErr   *auth.AuthenticationError
		deniedErr *auth.AccessDeniedError
		malformed *auth.MalformedRequestError
	)
	switch {
	case errors.As(err, &authErr):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.As(err, &deniedErr):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.As(err, &malformed):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *statusResponder) lastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

type testEnv struct {
	deps       Dependencies
	users      *fakeDirectory
	authorship *fakeAuthorship
	reviews    *fakeReviews
	recorder   *fakeRecorder
	responder  *statusResponder
	issuer     *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	verifier, err := auth.NewVerifier(testTokenConfig)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer(testTokenConfig)
	require.NoError(t, err)

	env := &testEnv{
		users: &fakeDirectory{users: map[string]bool{
			"alice": true, "bob": true, "carol": true, "admin": true,
		}},
		authorship: &fakeAuthorship{authors: map[int64][]int64{}},
		reviews:    &fakeReviews{reviews: map[int64]*models.Review{}},
		recorder:   &fakeRecorder{},
		responder:  &statusResponder{},
		issuer:     issuer,
	}
	env.deps = Dependencies{
		Verifier:   verifier,
		Users:      env.users,
		Authorship: env.authorship,
		Reviews:    env.reviews,
		Respond:    env.responder.Respond,
		Metrics:    env.recorder,
	}
	return env
}

func (e *testEnv) token(t *testing.T, id int64, username string, role models.Role) string {
	t.Helper()
	token, err := e.issuer.Issue(&models.User{ID: id, Username: username, Role: role})
	require.NoError(t, err)
	return token
}

// handlerProbe records whether the final handler ran and what body it saw.
type handlerProbe struct {
	called    bool
	body      string
	principal auth.Principal
}

func (p *handlerProbe) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.called = true
		p.principal, _ = auth.GetUserFromContext(r.Context())
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			p.body = string(raw)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// newGatedRouter mounts probe handlers behind the composer the same way the
// server does.
func newGatedRouter(t *testing.T, env *testEnv, probe *handlerProbe) http.Handler {
	t.Helper()

	composer, err := NewComposer(env.deps)
	require.NoError(t, err)

	gate := func(g Gates) func(http.Handler) http.Handler {
		mw, err := composer.Gate(g)
		require.NoError(t, err)
		return mw
	}
	self := SelfOwnership
	articles := ArticleOwnership
	reviews := ReviewOwnership

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(composer.Authenticate())

		r.With(gate(Gates{})).Get("/users", probe.handler())
		r.With(gate(Gates{Roles: []models.Role{models.RoleAdmin}})).Post("/users/admin", probe.handler())
		r.With(gate(Gates{Ownership: &self})).Patch("/users/{id}", probe.handler())
		r.With(gate(Gates{Ownership: &self})).Delete("/users/{id}", probe.handler())

		r.With(gate(Gates{Ownership: &articles})).Get("/articles/{id}", probe.handler())
		r.With(gate(Gates{Ownership: &articles})).Post("/articles", probe.handler())
		r.With(gate(Gates{Ownership: &articles})).Patch("/articles/{id}", probe.handler())
		r.With(gate(Gates{Ownership: &articles})).Delete("/articles/{id}", probe.handler())

		r.With(gate(Gates{Ownership: &reviews})).Post("/reviews", probe.handler())
		r.With(gate(Gates{Ownership: &reviews})).Delete("/reviews/{id}", probe.handler())
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func int64Ptr(v int64) *int64 { return &v }
