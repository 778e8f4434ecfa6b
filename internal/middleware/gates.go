package middleware

import (
	"errors"
	"net/http"

	"github.com/terraconstructs/articles/internal/db/models"
)

// Gates is the authorization configuration of one route group. Roles and
// Ownership are mutually exclusive; leaving both empty means any
// authenticated principal may proceed.
type Gates struct {
	Roles     []models.Role
	Ownership *OwnershipRule
}

// ErrConflictingGates is returned when a route declares both gates.
var ErrConflictingGates = errors.New("route cannot declare both a role gate and an ownership gate")

// Composer builds the authentication stage and per-route authorization
// gates from one set of dependencies.
type Composer struct {
	deps  Dependencies
	authn func(http.Handler) http.Handler
}

// NewComposer validates deps and prepares the authentication middleware.
func NewComposer(deps Dependencies) (*Composer, error) {
	authn, err := NewAuthnMiddleware(deps)
	if err != nil {
		return nil, err
	}
	return &Composer{deps: deps, authn: authn}, nil
}

// Authenticate returns the principal resolver. Mount it on every group that
// uses Gate.
func (c *Composer) Authenticate() func(http.Handler) http.Handler {
	return c.authn
}

// Gate returns the middleware for g. The result expects Authenticate to
// have run earlier in the chain and rejects requests without a principal.
func (c *Composer) Gate(g Gates) (func(http.Handler) http.Handler, error) {
	switch {
	case len(g.Roles) > 0 && g.Ownership != nil:
		return nil, ErrConflictingGates
	case len(g.Roles) > 0:
		return NewRoleMiddleware(g.Roles, c.deps)
	case g.Ownership != nil:
		return NewOwnershipMiddleware(*g.Ownership, c.deps)
	default:
		return c.requireAuthenticated, nil
	}
}

func (c *Composer) requireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := requirePrincipal(r); err != nil {
			c.deps.Respond(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
