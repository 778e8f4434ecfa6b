package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/telemetry"
)

// NewAuthnMiddleware resolves the request principal from its bearer token.
//
// The token must verify, its username must still exist in the user store,
// and its id and role claims must parse. On success the principal is stored
// on the request context; every later gate and handler reads it from there.
func NewAuthnMiddleware(deps Dependencies) (func(http.Handler) http.Handler, error) {
	if deps.Verifier == nil {
		return nil, errors.New("authn middleware requires token verifier")
	}
	if deps.Users == nil {
		return nil, errors.New("authn middleware requires user directory")
	}
	if deps.Respond == nil {
		return nil, errors.New("authn middleware requires error responder")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolvePrincipal(r, deps)
			if err != nil {
				var authErr *auth.AuthenticationError
				if errors.As(err, &authErr) {
					deps.record(telemetry.GateAuthn, telemetry.OutcomeReject)
					logging.Ctx(r.Context()).Warn().
						Str("gate", telemetry.GateAuthn).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Err(err).
						Msg("authentication rejected")
				} else {
					deps.record(telemetry.GateAuthn, telemetry.OutcomeError)
					logging.Ctx(r.Context()).Error().Err(err).Msg("authentication lookup failed")
				}
				deps.Respond(w, r, err)
				return
			}

			deps.record(telemetry.GateAuthn, telemetry.OutcomePass)
			next.ServeHTTP(w, r.WithContext(auth.SetUserContext(r.Context(), principal)))
		})
	}, nil
}

// resolvePrincipal returns an *auth.AuthenticationError for every client-side
// failure. Any other error comes from the user store.
func resolvePrincipal(r *http.Request, deps Dependencies) (auth.Principal, error) {
	token, err := auth.BearerToken(r)
	if err != nil {
		return auth.Principal{}, auth.NewAuthenticationError(err)
	}

	claims, err := deps.Verifier.Verify(token)
	if err != nil {
		return auth.Principal{}, auth.NewAuthenticationError(err)
	}

	username, err := claims.Get(auth.ClaimUsername)
	if err != nil {
		return auth.Principal{}, auth.NewAuthenticationError(err)
	}

	exists, err := deps.Users.ExistsByUsername(r.Context(), username)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("check user %q exists: %w", username, err)
	}
	if !exists {
		return auth.Principal{}, auth.NewAuthenticationError(fmt.Errorf("%w: %s", auth.ErrUnknownUser, username))
	}

	id, err := claims.UserID()
	if err != nil {
		return auth.Principal{}, auth.NewAuthenticationError(err)
	}
	role, err := claims.UserRole()
	if err != nil {
		return auth.Principal{}, auth.NewAuthenticationError(err)
	}

	return auth.Principal{ID: id, Username: username, Role: role}, nil
}

// requirePrincipal is the precondition of every authorization gate.
func requirePrincipal(r *http.Request) (auth.Principal, error) {
	principal, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		return auth.Principal{}, auth.NewAuthenticationError(errors.New("no authenticated principal on request"))
	}
	return principal, nil
}
