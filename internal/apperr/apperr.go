// internal/apperr/apperr.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying a machine-readable code and the HTTP
// status the route layer should answer with. Services return these for
// every failure a caller can act on; anything else is wrapped with %w and
// surfaces as a 500.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

func Newf(code string, status int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Status: status}
}

func NotFound(code, message string) *Error {
	return New(code, message, http.StatusNotFound)
}

func Conflict(code, message string) *Error {
	return New(code, message, http.StatusConflict)
}

func Forbidden(code, message string) *Error {
	return New(code, message, http.StatusForbidden)
}

func Unauthorized(code, message string) *Error {
	return New(code, message, http.StatusUnauthorized)
}

func BadRequest(code, message string) *Error {
	return New(code, message, http.StatusBadRequest)
}

// From extracts an *Error from err's chain, or nil.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
