package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into the gateway's error taxonomy.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindConnection      Kind = "connection"
	KindValidation      Kind = "validation"
	KindStorage         Kind = "storage"
	KindDatabase        Kind = "database"
	KindInternal        Kind = "internal"
)

// Error is a structured gateway error. Every failure that can reach the
// transport boundary is mapped to one of these; raw internal errors never
// leave a handler.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindConnection:
		return http.StatusBadGateway
	case KindStorage:
		return http.StatusUnprocessableEntity
	case KindDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NotFound creates a not-found error
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Unauthenticated creates an authentication error. The message is shared
// between unknown-user and wrong-password so the two cases stay
// indistinguishable to the caller.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Connection wraps a tenant database connectivity failure
func Connection(msg string, cause error) *Error {
	return &Error{Kind: KindConnection, Message: msg, cause: cause}
}

// Validation creates a validation error
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Storage wraps a blob store failure
func Storage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, cause: cause}
}

// Database wraps a control or tenant database query failure. Distinct
// from KindStorage so a database outage surfaces as a server error,
// not a rejected upload.
func Database(msg string, cause error) *Error {
	return &Error{Kind: KindDatabase, Message: msg, cause: cause}
}

// Internal wraps an unexpected failure
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// From converts any error to a *Error, defaulting to KindInternal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
