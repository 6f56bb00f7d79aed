// Package errors provides standardized domain errors with codes for QueryMill.
//
// Usage:
//
//	// In the engine - return typed errors
//	if len(available) == 0 {
//	    return errors.ExhaustedCategoryf("category %q has no unused narrowers", name)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrExhaustedCategory) {
//	    continue // abandon this round, move on to the next
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeUnknownCategory     Code = "UNKNOWN_CATEGORY"
	CodeDuplicateCategory   Code = "DUPLICATE_CATEGORY"
	CodeExhaustedCategory   Code = "EXHAUSTED_CATEGORY"
	CodeUnsupportedOperator Code = "UNSUPPORTED_OPERATOR"
	CodeInvalidPredicate    Code = "INVALID_PREDICATE"
	// CodeFormatMismatch marks a backend/variant formatting mismatch.
	// The composition engine always recovers from it locally; it must never
	// reach an API response.
	CodeFormatMismatch Code = "FORMAT_MISMATCH"
	CodeValidation     Code = "VALIDATION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeInternal       Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnknownCategory, CodeUnsupportedOperator, CodeValidation, CodeInvalidPredicate:
		return http.StatusUnprocessableEntity
	case CodeExhaustedCategory, CodeDuplicateCategory, CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrUnknownCategory     = &Error{Code: CodeUnknownCategory, Message: "unknown category"}
	ErrDuplicateCategory   = &Error{Code: CodeDuplicateCategory, Message: "duplicate category"}
	ErrExhaustedCategory   = &Error{Code: CodeExhaustedCategory, Message: "category exhausted"}
	ErrUnsupportedOperator = &Error{Code: CodeUnsupportedOperator, Message: "unsupported operator"}
	ErrInvalidPredicate    = &Error{Code: CodeInvalidPredicate, Message: "invalid predicate"}
	ErrFormatMismatch      = &Error{Code: CodeFormatMismatch, Message: "formatting mismatch"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict            = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal            = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// UnknownCategory creates an unknown category error.
func UnknownCategory(msg string) *Error {
	return &Error{Code: CodeUnknownCategory, Message: msg}
}

// UnknownCategoryf creates an unknown category error with formatted message.
func UnknownCategoryf(format string, args ...any) *Error {
	return &Error{Code: CodeUnknownCategory, Message: fmt.Sprintf(format, args...)}
}

// DuplicateCategory creates a duplicate category error.
func DuplicateCategory(msg string) *Error {
	return &Error{Code: CodeDuplicateCategory, Message: msg}
}

// DuplicateCategoryf creates a duplicate category error with formatted message.
func DuplicateCategoryf(format string, args ...any) *Error {
	return &Error{Code: CodeDuplicateCategory, Message: fmt.Sprintf(format, args...)}
}

// ExhaustedCategory creates an exhausted category error.
func ExhaustedCategory(msg string) *Error {
	return &Error{Code: CodeExhaustedCategory, Message: msg}
}

// ExhaustedCategoryf creates an exhausted category error with formatted message.
func ExhaustedCategoryf(format string, args ...any) *Error {
	return &Error{Code: CodeExhaustedCategory, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedOperator creates an unsupported operator error.
func UnsupportedOperator(msg string) *Error {
	return &Error{Code: CodeUnsupportedOperator, Message: msg}
}

// UnsupportedOperatorf creates an unsupported operator error with formatted message.
func UnsupportedOperatorf(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedOperator, Message: fmt.Sprintf(format, args...)}
}

// InvalidPredicate creates an invalid predicate error.
func InvalidPredicate(msg string) *Error {
	return &Error{Code: CodeInvalidPredicate, Message: msg}
}

// InvalidPredicatef creates an invalid predicate error with formatted message.
func InvalidPredicatef(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidPredicate, Message: fmt.Sprintf(format, args...)}
}

// FormatMismatch creates a formatting mismatch error.
func FormatMismatch(msg string) *Error {
	return &Error{Code: CodeFormatMismatch, Message: msg}
}

// FormatMismatchf creates a formatting mismatch error with formatted message.
func FormatMismatchf(format string, args ...any) *Error {
	return &Error{Code: CodeFormatMismatch, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
