// Package apperr defines the error kinds shared by repositories, services
// and handlers, and how each kind maps onto an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable class of an error.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindDuplicateName        Kind = "duplicate_name"
	KindDuplicateSubcategory Kind = "duplicate_subcategory"
	KindValidation           Kind = "validation"
	KindInvalidStatus        Kind = "invalid_status"
	KindPermission           Kind = "permission"
	KindUnauthorized         Kind = "unauthorized"
	KindParse                Kind = "parse"
	KindStorage              Kind = "storage"
	KindTimeout              Kind = "timeout"
	KindInternal             Kind = "internal"
)

// Error carries a Kind, a message safe to show to clients, and the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func Permission(format string, args ...any) *Error {
	return New(KindPermission, format, args...)
}

func Storage(err error, format string, args ...any) *Error {
	return Wrap(KindStorage, err, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a kind onto the response status used by handlers.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateName:
		return http.StatusConflict
	case KindDuplicateSubcategory, KindValidation, KindInvalidStatus, KindParse:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
