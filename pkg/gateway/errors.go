package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tokenshield/pkg/safety"
)

// RemoteFetchError reports that one call to the risk authority failed. The
// cause is a transport error, an *APIError, a decode failure, a timeout or
// network.ErrCircuitOpen.
type RemoteFetchError struct {
	Dimension safety.Dimension
	Cause     error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Dimension, e.Cause)
}

func (e *RemoteFetchError) Unwrap() error { return e.Cause }

// InvalidInputError reports a missing or malformed identifier, detected
// before any request is issued.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// APIError is returned as the cause when the authority answers with a
// non-2xx status.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Temporary reports whether the failure says something about the health of
// the authority rather than about the request.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func newAPIError(operation string, statusCode int, message string) *APIError {
	return &APIError{Operation: operation, StatusCode: statusCode, Message: message}
}

// IsNotFound reports whether err carries an HTTP 404 from the authority.
func IsNotFound(err error) bool { return HasStatusCode(err, http.StatusNotFound) }

// IsUnauthorized reports whether err carries an HTTP 401 from the authority.
func IsUnauthorized(err error) bool { return HasStatusCode(err, http.StatusUnauthorized) }

// HasStatusCode reports whether err wraps an *APIError with the given status.
func HasStatusCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsInvalidInput reports whether err is an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var inErr *InvalidInputError
	return errors.As(err, &inErr)
}

// IsRemoteFetch reports whether err is a *RemoteFetchError.
func IsRemoteFetch(err error) bool {
	var fetchErr *RemoteFetchError
	return errors.As(err, &fetchErr)
}

// countsAgainstCircuit decides which failures trip the breaker. Caller
// cancellation and 4xx answers from a healthy server do not.
func countsAgainstCircuit(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}
