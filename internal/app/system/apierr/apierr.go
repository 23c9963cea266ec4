// Package apierr defines the typed errors the service layer returns and the
// mapping from those errors to HTTP responses.
//
// Handlers call Write with whatever error bubbled up; known *Error values map
// to their status, anything else becomes a 500 with a generic message so
// storage-level details never leak to clients.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/tabtrail/internal/app/system/jsonutil"
)

// Error is an API error with an associated HTTP status code.
type Error struct {
	Status  int
	Message string
	Err     error // underlying cause, for logs only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest returns a 400 error for malformed or invalid input.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized returns a 401 error for missing or invalid credentials.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NotFound returns a 404 error. It is also used when a resource exists but
// belongs to a different user, so existence is not leaked cross-user.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict returns a 409 error for duplicate unique fields.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// TooManyRequests returns a 429 error for rate-limited callers.
func TooManyRequests(message string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: message}
}

// UploadFailed returns a 500 error wrapping an image host failure.
func UploadFailed(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Image upload failed", Err: err}
}

// Internal returns a 500 error wrapping an unexpected failure.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// Write sends err as a JSON error envelope. Unknown error types are reported
// as a generic 500 without exposing the underlying message.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		jsonutil.Fail(w, apiErr.Status, apiErr.Message)
		return
	}
	jsonutil.Fail(w, http.StatusInternalServerError, "Internal server error")
}

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
