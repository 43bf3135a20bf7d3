// Package errors provides structured error types and response helpers for the API.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes for structured API responses.
const (
	CodeAuthError          = "AUTH_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeForbidden          = "FORBIDDEN"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeBackendError       = "BACKEND_ERROR"
	CodeBackendTimeout     = "BACKEND_TIMEOUT"
)

// APIError represents a structured API error response. The JSON shape keeps
// the fields mobile clients already parse: a human-readable error string
// plus optional retry and remediation hints.
type APIError struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a new APIError with the given code and message.
func New(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// NewAuthError creates a 401 error.
func NewAuthError(message string) *APIError {
	return New(CodeAuthError, message)
}

// NewValidationError creates a 400 error.
func NewValidationError(message string) *APIError {
	return New(CodeValidationError, message)
}

// NewRateLimitError creates a 429 error with the retry hint.
func NewRateLimitError(retryAfterSeconds int) *APIError {
	return &APIError{
		Code:       CodeRateLimitExceeded,
		Message:    "Too many requests",
		RetryAfter: retryAfterSeconds,
	}
}

// NewForbiddenError creates a 403 error.
func NewForbiddenError(message string) *APIError {
	return New(CodeForbidden, message)
}

// NewServiceUnavailableError creates a 503 error.
func NewServiceUnavailableError() *APIError {
	return New(CodeServiceUnavailable, "Service temporarily unavailable")
}

// NewBackendError creates a 500 error.
func NewBackendError(message string) *APIError {
	return New(CodeBackendError, message)
}

// WithSuggestion returns a copy of the error with a remediation hint.
func (e *APIError) WithSuggestion(suggestion string) *APIError {
	return &APIError{
		Code:       e.Code,
		Message:    e.Message,
		RetryAfter: e.RetryAfter,
		Suggestion: suggestion,
	}
}

// HTTPStatusCode returns the appropriate HTTP status code for the error.
func (e *APIError) HTTPStatusCode() int {
	switch e.Code {
	case CodeAuthError:
		return http.StatusUnauthorized
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case CodeForbidden:
		return http.StatusForbidden
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeBackendTimeout:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an APIError as a JSON response.
func WriteError(w http.ResponseWriter, err *APIError) {
	WriteJSON(w, err.HTTPStatusCode(), err)
}
