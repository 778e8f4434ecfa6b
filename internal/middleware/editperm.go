package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/telemetry"
)

// CheckEditPermission passes admins unconditionally and users only when
// they are among ownerIDs. An empty set rejects every user.
func CheckEditPermission(principal auth.Principal, ownerIDs []int64) error {
	if principal.IsAdmin() || slices.Contains(ownerIDs, principal.ID) {
		return nil
	}
	return &auth.AccessDeniedError{Username: principal.Username}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// NewOwnershipMiddleware enforces edit permission on every non-read request.
// Owner ids are resolved before the handler runs and only for those requests.
func NewOwnershipMiddleware(rule OwnershipRule, deps Dependencies) (func(http.Handler) http.Handler, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if deps.Respond == nil {
		return nil, errors.New("ownership middleware requires error responder")
	}
	if rule.Existing == SourceAuthorshipLookup && deps.Authorship == nil {
		return nil, errors.New("ownership middleware requires authorship lookup")
	}
	if rule.Existing == SourceSingleOwnerLookup && deps.Reviews == nil {
		return nil, errors.New("ownership middleware requires review lookup")
	}
	resolver := OwnerResolver{Authorship: deps.Authorship, Reviews: deps.Reviews}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isReadOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := requirePrincipal(r)
			if err != nil {
				deps.record(telemetry.GateOwnership, telemetry.OutcomeReject)
				deps.Respond(w, r, err)
				return
			}

			ownerIDs, err := resolver.Resolve(w, r, rule)
			if err != nil {
				var malformed *auth.MalformedRequestError
				if errors.As(err, &malformed) {
					deps.record(telemetry.GateOwnership, telemetry.OutcomeReject)
					logging.Ctx(r.Context()).Warn().
						Str("username", principal.Username).
						Str("gate", telemetry.GateOwnership).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Err(err).
						Msg("ownership gate rejected request body")
					deps.Respond(w, r, err)
					return
				}
				deps.record(telemetry.GateOwnership, telemetry.OutcomeError)
				logging.Ctx(r.Context()).Error().
					Str("username", principal.Username).
					Str("gate", telemetry.GateOwnership).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Err(err).
					Msg("ownership resolution failed")
				deps.Respond(w, r, err)
				return
			}

			if err := CheckEditPermission(principal, ownerIDs); err != nil {
				deps.record(telemetry.GateOwnership, telemetry.OutcomeReject)
				logging.Ctx(r.Context()).Warn().
					Str("username", principal.Username).
					Str("gate", telemetry.GateOwnership).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("owners", fmt.Sprint(ownerIDs)).
					Msg("edit permission rejected request")
				deps.Respond(w, r, err)
				return
			}

			deps.record(telemetry.GateOwnership, telemetry.OutcomePass)
			next.ServeHTTP(w, r)
		})
	}, nil
}
