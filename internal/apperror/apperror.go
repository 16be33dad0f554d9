// Package apperror provides coded domain errors that map onto HTTP statuses.
//
// Services return these errors; handlers translate them with HTTPStatus and
// never inspect error strings.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"reviewhub/internal/policy"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the status code for c.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Fields maps a JSON field name to a message about it.
type Fields map[string]string

// Error is a domain error with a code, message and optional field details.
type Error struct {
	Code    Code
	Message string
	Fields  Fields
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Sentinels for errors.Is.
var (
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "authentication required"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "you do not have permission to perform this action"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal server error"}
)

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Field creates a validation error about a single field.
func Field(field, msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Fields: Fields{field: msg}}
}

// Fieldf is Field with a formatted message.
func Fieldf(field, format string, args ...any) *Error {
	return Field(field, fmt.Sprintf(format, args...))
}

// ValidationWithFields creates a validation error carrying several field messages.
func ValidationWithFields(msg string, fields Fields) *Error {
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// Internal wraps an unexpected error. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: ErrInternal.Message, cause: err}
}

// From returns err as an *Error, wrapping unknown errors as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// FromDecision converts a denied policy decision into the matching error.
// It returns nil when the decision allows the request.
func FromDecision(d policy.Decision) error {
	switch d {
	case policy.Allow:
		return nil
	case policy.DenyUnauthenticated:
		return ErrUnauthorized
	default:
		return ErrForbidden
	}
}
