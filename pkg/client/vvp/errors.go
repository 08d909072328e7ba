package vvp

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the deployment does not exist.
var ErrNotFound = errors.New("deployment not found")

// ErrConflict is returned when the server rejects a write because the
// resource version no longer matches.
var ErrConflict = errors.New("resource version conflict")

// ErrInvalidServer is returned when the configured server is not an absolute http(s) URL.
var ErrInvalidServer = errors.New("invalid server url")

// maxErrorBody bounds the response body echoed in error messages.
const maxErrorBody = 500

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"api %s %s failed: %d %s: %s",
		e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Body,
	)
}

// Is maps status codes onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	default:
		return false
	}
}

// Retryable reports whether the status is worth retrying.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests
}

// ConnectivityError is returned when the API stayed unreachable or kept
// failing transiently for every attempt.
type ConnectivityError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

func truncateBody(body []byte) string {
	msg := string(body)
	if len(msg) > maxErrorBody {
		return msg[:maxErrorBody] + "…"
	}

	return msg
}
