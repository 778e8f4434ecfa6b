package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Custom claim names carried by every access token.
const (
	ClaimUsername = "username"
	ClaimID       = "id"
	ClaimRole     = "role"
)

// Claims is the decoded access token payload.
type Claims struct {
	Username string `json:"username,omitempty"`
	ID       string `json:"id,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig is shared by the verifier and the issuer so both agree on
// secret, issuer and audience.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	// TTL is the lifetime of issued tokens. Ignored by the verifier.
	TTL time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (c TokenConfig) validate() error {
	if len(c.Secret) == 0 {
		return errors.New("token secret is required")
	}
	if c.Issuer == "" {
		return errors.New("token issuer is required")
	}
	if c.Audience == "" {
		return errors.New("token audience is required")
	}
	return nil
}

func (c TokenConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Verifier validates HS256 bearer tokens against a fixed secret, issuer and
// audience. It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier constructs a Verifier.
func NewVerifier(cfg TokenConfig) (*Verifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{
		secret: append([]byte(nil), cfg.Secret...),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry and returns
// the decoded claims. Every failure wraps ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: unsupported authorization scheme", ErrMissingToken)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
