package botapi

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyToken is returned by NewClient when no token is supplied.
	ErrEmptyToken = errors.New("botapi: token is required")

	// ErrEmptyMethod is returned when a call names no Bot API method.
	ErrEmptyMethod = errors.New("botapi: method name is required")

	// ErrInvalidMedia is returned when a media value cannot be transmitted.
	ErrInvalidMedia = errors.New("botapi: invalid media value")

	// ErrResponseTooLarge is returned when a response body exceeds the
	// read limit. The body is discarded rather than decoded partially.
	ErrResponseTooLarge = errors.New("botapi: response too large")
)

// Fallback descriptions used when the service reports a failure without one.
const (
	fallbackPOST  = "Unknown error performing POST request"
	fallbackGET   = "Unknown error performing GET request"
	fallbackFetch = "Unknown error performing retrieving requested media"
)

// APIError is a failure reported by the remote service: the HTTP exchange
// completed but the response was not marked ok.
type APIError struct {
	Method      string `json:"method,omitempty"`
	Code        int    `json:"error_code,omitempty"`
	Description string `json:"description"`
	RetryAfter  int    `json:"retry_after,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("botapi: %s: %d %s (retry after %ds)", e.Method, e.Code, e.Description, e.RetryAfter)
	}
	if e.Code > 0 {
		return fmt.Sprintf("botapi: %s: %d %s", e.Method, e.Code, e.Description)
	}
	return fmt.Sprintf("botapi: %s: %s", e.Method, e.Description)
}

// ShapeError reports positional arguments that match neither the inline nor
// the chat/message addressing form of an edit method. It is returned before
// any request is made.
type ShapeError struct {
	Method string
	Reason string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("botapi: %s: could not handle passed arguments: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("botapi: %s: could not handle passed arguments", e.Method)
}

// newAPIError builds an APIError, substituting fallback for a missing description.
func newAPIError(method string, code int, description, fallback string) *APIError {
	if description == "" {
		description = fallback
	}
	return &APIError{Method: method, Code: code, Description: description}
}
