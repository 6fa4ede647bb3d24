// Package apperr defines the error taxonomy shared by repositories, services and handlers
package apperr

import (
	"errors"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalid         = errors.New("invalid input")
	ErrUpstream        = errors.New("upstream failure")
)

// Error is a classified error with a message safe to show to the caller
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New creates a classified error
func New(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Unauthenticated reports a missing or invalid identity
func Unauthenticated(message string) *Error { return New(ErrUnauthenticated, message, nil) }

// Forbidden reports an authenticated principal acting on something it does not own
func Forbidden(message string) *Error { return New(ErrForbidden, message, nil) }

// NotFound reports a referenced entity that does not exist
func NotFound(message string) *Error { return New(ErrNotFound, message, nil) }

// Conflict reports a uniqueness violation
func Conflict(message string) *Error { return New(ErrConflict, message, nil) }

// Invalid reports malformed input
func Invalid(message string) *Error { return New(ErrInvalid, message, nil) }

// Upstream reports a failure of an external collaborator
func Upstream(message string, cause error) *Error { return New(ErrUpstream, message, cause) }

// HTTPStatus maps an error to its response status; unclassified errors are 500
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text shown to the caller; unclassified errors are hidden
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return "internal server error"
}
