// Package apperr defines the typed error taxonomy used across services.
// Services raise these; the echo error handler translates them to HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeUniqueViolation   = "UNIQUE_VIOLATION"
	CodeAccessDenied      = "ACCESS_DENIED"
	CodeInvalidPagination = "INVALID_PAGINATION"
	CodeValidation        = "VALIDATION_ERROR"
	CodeDomain            = "DOMAIN_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// Error is the standard application error. It carries a machine-readable
// code, the suggested HTTP status, and an optional underlying cause.
type Error struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail attaches a key-value pair to the error details.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

func NotFound(format string, args ...any) *Error {
	return &Error{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusNotFound,
	}
}

func AlreadyExists(format string, args ...any) *Error {
	return &Error{
		Code:       CodeAlreadyExists,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusConflict,
	}
}

// UniqueViolation is the repository-boundary variant of AlreadyExists,
// produced when the database rejects an insert on a unique index.
func UniqueViolation(format string, args ...any) *Error {
	return &Error{
		Code:       CodeUniqueViolation,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusConflict,
	}
}

func AccessDenied(format string, args ...any) *Error {
	return &Error{
		Code:       CodeAccessDenied,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusForbidden,
	}
}

func InvalidPagination(format string, args ...any) *Error {
	return &Error{
		Code:       CodeInvalidPagination,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{
		Code:       CodeValidation,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// Domain reports a business-rule violation (confirming a refused asset,
// invalid date ranges and the like).
func Domain(format string, args ...any) *Error {
	return &Error{
		Code:       CodeDomain,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusBadRequest,
	}
}

func Internal(err error) *Error {
	return &Error{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsNotFound(err error) bool          { return is(err, CodeNotFound) }
func IsAccessDenied(err error) bool      { return is(err, CodeAccessDenied) }
func IsInvalidPagination(err error) bool { return is(err, CodeInvalidPagination) }
func IsValidation(err error) bool        { return is(err, CodeValidation) }
func IsDomain(err error) bool            { return is(err, CodeDomain) }

// IsAlreadyExists matches both the service-level and DB-level duplicates.
func IsAlreadyExists(err error) bool {
	return is(err, CodeAlreadyExists) || is(err, CodeUniqueViolation)
}
