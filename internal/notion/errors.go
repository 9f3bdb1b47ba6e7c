package notion

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the three failure kinds the scanner distinguishes.
// *APIError values match them through errors.Is.
var (
	// ErrAuth is returned for a missing token and for HTTP 401/403.
	ErrAuth = errors.New("notion: authentication failed")

	// ErrRateLimited is returned when HTTP 429 persists after all retries.
	ErrRateLimited = errors.New("notion: rate limited")

	// ErrAPI matches every non-2xx response from the API.
	ErrAPI = errors.New("notion: API error")

	// ErrNotFound matches HTTP 404 and the object_not_found error code.
	ErrNotFound = errors.New("notion: object not found")
)

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Code is Notion's machine-readable error code, e.g. "unauthorized".
	Code string

	// Message is Notion's human-readable error message.
	Message string

	// RequestID is Notion's request identifier, useful for support tickets.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("notion API error (status %d, %s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("notion API error (status %d): %s", e.Status, msg)
}

// Is reports whether the API error belongs to the target error kind.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAPI:
		return true
	case ErrAuth:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrNotFound:
		return e.Status == http.StatusNotFound || e.Code == "object_not_found"
	default:
		return false
	}
}

// errorBody is the JSON error object returned by the API.
type errorBody struct {
	Object    string `json:"object"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}
