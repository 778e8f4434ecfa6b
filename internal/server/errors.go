package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/logging"
	"github.com/terraconstructs/articles/internal/repository"
	"github.com/terraconstructs/articles/internal/services/account"
)

// Error categories reported in ErrorResponse.ErrorResponseType.
const (
	ErrorTypeCommon         = "COMMON"
	ErrorTypeAuthentication = "AUTHENTICATION"
	ErrorTypeValidation     = "VALIDATION"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Message           string            `json:"message"`
	ErrorResponseType string            `json:"errorResponseType"`
	Details           map[string]string `json:"details"`
}

// badRequestError reports a request the server could not parse.
type badRequestError struct {
	msg string
	err error
}

func (e *badRequestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *badRequestError) Unwrap() error { return e.err }

// classify picks the status and error category for err.
func classify(err error) (int, string) {
	var (
		authErr       *auth.AuthenticationError
		deniedErr     *auth.AccessDeniedError
		validationErr *ValidationError
		badReqErr     *badRequestError
		malformedErr  *auth.MalformedRequestError
		tooLargeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge, ErrorTypeCommon
	case errors.As(err, &authErr), errors.Is(err, account.ErrBadCredentials):
		return http.StatusUnauthorized, ErrorTypeAuthentication
	case errors.As(err, &deniedErr):
		return http.StatusForbidden, ErrorTypeCommon
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, ErrorTypeValidation
	case errors.As(err, &badReqErr), errors.As(err, &malformedErr):
		return http.StatusBadRequest, ErrorTypeCommon
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorTypeCommon
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, ErrorTypeCommon
	default:
		return http.StatusInternalServerError, ErrorTypeCommon
	}
}

// respondError maps err to a status and writes an ErrorResponse. It
// satisfies auth.ErrorResponder so gates share the mapping with handlers.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classify(err)

	body := ErrorResponse{
		Message:           err.Error(),
		ErrorResponseType: kind,
		Details:           map[string]string{},
	}

	var (
		validationErr *ValidationError
		deniedErr     *auth.AccessDeniedError
		cfgErr        *auth.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		body.Message = "Request validation failed"
		body.Details = validationErr.Details
	case errors.As(err, &deniedErr):
		// The gate message names the user and is meant to be shown as-is.
		body.Message = deniedErr.Error()
	case status == http.StatusInternalServerError && !errors.As(err, &cfgErr):
		body.Message = "Internal server error"
	}

	log := logging.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, status, body)
}

var _ auth.ErrorResponder = respondError

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response body")
	}
}
