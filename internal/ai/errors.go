package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error from an AI API
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// NewAPIError creates a new API error
func NewAPIError(provider string, statusCode int, message string, err error) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s API error (status %d): %s: %v", e.Provider, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping
func (e *APIError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// ErrorKind is the user-facing category of a backend failure
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindUnauthorized
	KindMalformedRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnauthorized:
		return "unauthorized"
	case KindMalformedRequest:
		return "malformed_request"
	default:
		return "unknown"
	}
}

var kindSubstrings = []struct {
	kind    ErrorKind
	needles []string
}{
	{KindRateLimited, []string{"rate limit", "rate_limit", "quota", "too many requests", "resource_exhausted", "usage-limited", "insufficient_funds"}},
	{KindUnauthorized, []string{"api key", "api_key", "unauthorized", "permission denied", "permission_denied", "invalid authentication", "unauthenticated"}},
	{KindMalformedRequest, []string{"bad request", "invalid argument", "invalid_argument", "malformed", "invalid_request"}},
}

// Classify maps a backend failure to an ErrorKind.
//
// An *APIError with a recognised HTTP status wins. Otherwise this is a
// heuristic over the error text, checked in order rate limit, credentials,
// malformed request. Everything else, timeouts included, is KindUnknown.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return KindRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindUnauthorized
		case http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
			return KindMalformedRequest
		}
	}

	msg := strings.ToLower(err.Error())
	for _, group := range kindSubstrings {
		for _, needle := range group.needles {
			if strings.Contains(msg, needle) {
				return group.kind
			}
		}
	}
	return KindUnknown
}
