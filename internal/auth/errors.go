package auth

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingToken means the request carried no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken covers bad signatures, wrong issuer or audience, expiry and malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingClaim means a required custom claim was absent or empty.
	ErrMissingClaim = errors.New("missing claim")
	// ErrInvalidClaim means a claim was present but could not be converted.
	ErrInvalidClaim = errors.New("invalid claim")
	// ErrUnknownUser means the token names a user that no longer exists.
	ErrUnknownUser = errors.New("user no longer exists")
)

// AuthenticationError rejects a request that has no valid principal.
type AuthenticationError struct {
	Err error
}

// NewAuthenticationError wraps err as an authentication failure.
func NewAuthenticationError(err error) *AuthenticationError {
	return &AuthenticationError{Err: err}
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed"
	}
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// AccessDeniedError rejects an authenticated principal that failed a role
// or ownership gate. The username is kept for audit.
type AccessDeniedError struct {
	Username string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("User with username = %s doesn't have the required permissions", e.Username)
}

// ConfigurationError signals a route wired with an ownership rule that
// cannot find the id it expects. It is a programming error, not a client one.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "route configuration error: " + e.Msg
	}
	return fmt.Sprintf("route configuration error: %s: %v", e.Msg, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// MalformedRequestError rejects a request body a gate could not read
// unambiguously, such as an oversized body or an owner field spelled twice
// with different letter case. Unlike ConfigurationError it is the client's fault.
type MalformedRequestError struct {
	Msg string
	Err error
}

func (e *MalformedRequestError) Error() string {
	if e.Err == nil {
		return "malformed request: " + e.Msg
	}
	return fmt.Sprintf("malformed request: %s: %v", e.Msg, e.Err)
}

func (e *MalformedRequestError) Unwrap() error { return e.Err }

// ErrorResponder writes a gate failure to the response writer. Gates never
// choose status codes themselves; the HTTP layer supplies this.
type ErrorResponder func(http.ResponseWriter, *http.Request, error)
