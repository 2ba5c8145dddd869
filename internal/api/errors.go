package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBadResponse means a 2xx response did not carry the expected body.
var ErrBadResponse = errors.New("unexpected response from service")

// NetworkError means the request could not be sent or no response was received.
// Cancelled and timed-out requests are reported this way too.
type NetworkError struct {
	Op  string // operation name, e.g. "list videos"
	Err error
}

// Error implements error.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

// Unwrap returns the transport error.
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means the service answered with a status outside 200-299.
type HTTPError struct {
	Op         string
	StatusCode int
	// Message is the "error" field of the response body, if the service sent one.
	Message string
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
}

// NotFound reports whether the service answered 404.
func (e *HTTPError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// ServerSide reports whether the service's own pipeline failed (5xx).
func (e *HTTPError) ServerSide() bool { return e.StatusCode >= 500 }

// IsNetwork reports whether err (or anything it wraps) is a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status carried by err, or 0 if err holds no *HTTPError.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
