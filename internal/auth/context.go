package auth

import (
	"context"

	"github.com/terraconstructs/articles/internal/db/models"
)

// Principal is the authenticated caller for the lifetime of one request.
type Principal struct {
	ID       int64
	Username string
	Role     models.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

type principalContextKey struct{}

// SetUserContext stores the authenticated principal on the context for downstream consumers.
func SetUserContext(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// GetUserFromContext retrieves the authenticated principal from the context.
func GetUserFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}
