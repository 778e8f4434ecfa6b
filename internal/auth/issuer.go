package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terraconstructs/articles/internal/db/bunx"
	"github.com/terraconstructs/articles/internal/db/models"
)

// TokenIssuer signs access tokens that a Verifier built from the same
// TokenConfig will accept.
type TokenIssuer struct {
	cfg TokenConfig
}

// NewTokenIssuer constructs a TokenIssuer. TTL must be positive.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	cfg.Secret = append([]byte(nil), cfg.Secret...)
	return &TokenIssuer{cfg: cfg}, nil
}

// Issue signs a token for user carrying its username, id and role.
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errors.New("cannot issue token for unsaved user")
	}

	now := i.cfg.now()
	claims := Claims{
		Username: user.Username,
		ID:       strconv.FormatInt(user.ID, 10),
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        bunx.NewUUIDv7(),
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
