package models

import (
	"fmt"
	"slices"

	"github.com/uptrace/bun"
)

// Role is the closed set of account roles. The string value is what gets
// stored in the users table and carried in the token role claim.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// ParseRole converts a role name into a Role. Unknown names are an error,
// never a default.
func ParseRole(name string) (Role, error) {
	role := Role(name)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", name)
	}
	return role, nil
}

// User is an account that can authenticate and author content.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,notnull,unique" json:"username"`
	Email    string `bun:"email,notnull,unique" json:"email"`
	Password string `bun:"password,notnull" json:"-"` // bcrypt hash
	Role     Role   `bun:"role,notnull" json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
