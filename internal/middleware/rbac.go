package middleware

import (
	"errors"
	"net/http"
	"slices"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/db/models"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/telemetry"
)

// CheckRole passes iff the principal's role is in the allow-list.
func CheckRole(principal auth.Principal, allowed []models.Role) error {
	if slices.Contains(allowed, principal.Role) {
		return nil
	}
	return &auth.AccessDeniedError{Username: principal.Username}
}

// NewRoleMiddleware rejects principals whose role is not in allowed.
func NewRoleMiddleware(allowed []models.Role, deps Dependencies) (func(http.Handler) http.Handler, error) {
	if len(allowed) == 0 {
		return nil, errors.New("role middleware requires at least one allowed role")
	}
	for _, role := range allowed {
		if !role.Valid() {
			return nil, errors.New("role middleware given unknown role " + string(role))
		}
	}
	if deps.Respond == nil {
		return nil, errors.New("role middleware requires error responder")
	}
	allowed = slices.Clone(allowed)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := requirePrincipal(r)
			if err == nil {
				err = CheckRole(principal, allowed)
			}
			if err != nil {
				deps.record(telemetry.GateRole, telemetry.OutcomeReject)
				logging.Ctx(r.Context()).Warn().
					Str("username", principal.Username).
					Str("gate", telemetry.GateRole).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("role gate rejected request")
				deps.Respond(w, r, err)
				return
			}

			deps.record(telemetry.GateRole, telemetry.OutcomePass)
			next.ServeHTTP(w, r)
		})
	}, nil
}
