// Package apperr defines the error taxonomy shared by the core and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds of failure. Match with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidDate     = errors.New("invalid date")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrOwnership       = errors.New("ownership violation")
	ErrBatchTooLarge   = errors.New("batch too large")
	ErrItemProcessing  = errors.New("item processing failed")
	ErrStorage         = errors.New("storage failure")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

// Error is a classified error with a stable machine-readable code.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

// New creates a classified error without an underlying cause.
func New(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(err error, kind error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Storage wraps a persistence failure.
func Storage(op string, err error) error {
	return Wrap(err, ErrStorage, "STORAGE_ERROR", op)
}

// Code returns the machine code carried by err, or a code derived from its kind.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrInvalidDate):
		return "INVALID_DATE"
	case errors.Is(err, ErrSeasonNotFound):
		return "SEASON_NOT_FOUND"
	case errors.Is(err, ErrOwnership):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrBatchTooLarge):
		return "BATCH_TOO_LARGE"
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// Message returns the caller-safe message carried by err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "An unexpected error occurred"
	}
	return err.Error()
}

// HTTPStatus maps an error kind to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrOwnership):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSeasonNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
