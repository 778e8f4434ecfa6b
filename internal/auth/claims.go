package auth

import (
	"fmt"
	"strconv"

	"github.com/terraconstructs/articles/internal/db/models"
)

// Get returns the named custom claim. An absent or empty claim wraps ErrMissingClaim.
func (c *Claims) Get(name string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingClaim, name)
	}

	var value string
	switch name {
	case ClaimUsername:
		value = c.Username
	case ClaimID:
		value = c.ID
	case ClaimRole:
		value = c.Role
	default:
		return "", fmt.Errorf("%w: %s is not a supported claim", ErrMissingClaim, name)
	}

	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingClaim, name)
	}
	return value, nil
}

// UserID returns the id claim as an integer.
func (c *Claims) UserID() (int64, error) {
	raw, err := c.Get(ClaimID)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidClaim, ClaimID, raw)
	}
	return id, nil
}

// UserRole returns the role claim as a known Role.
func (c *Claims) UserRole() (models.Role, error) {
	raw, err := c.Get(ClaimRole)
	if err != nil {
		return "", err
	}
	role, err := models.ParseRole(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidClaim, err)
	}
	return role, nil
}
