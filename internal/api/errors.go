package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a backend rejection. Message carries the backend's own wording
// verbatim; views surface it unmodified, the way the login page does.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// ErrNotFound marks a missing resource across gateway implementations.
var ErrNotFound = &Error{StatusCode: http.StatusNotFound, Message: "not found"}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports an expired or missing token.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
