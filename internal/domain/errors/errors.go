// Package errors defines the domain error taxonomy. These are values returned
// to the caller, not control flow for the rest of the core.
package errors

import (
	"net/http"

	"gatehouse/internal/errors"
)

// AppError defines the interface for application-specific errors.
type AppError interface {
	error
	HTTPCode() int     // HTTP-equivalent status code for the collaborator
	ErrorCode() string // Business error code
	Message() string   // User-facing error message
}

// BaseError is a basic error structure that implements the AppError interface.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
}

// NewBaseError creates a new base error.
func NewBaseError(httpCode int, errorCode, message string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
	}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP-equivalent status code.
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code.
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-facing error message.
func (e *BaseError) Message() string {
	return e.message
}

// Predefined error types.
var (
	// ErrDuplicateIdentity is returned when a uniqueness constraint on
	// username or email is violated at write time. It is distinct from plain
	// validation failure so a lost create race is still reported correctly.
	ErrDuplicateIdentity = NewBaseError(
		http.StatusConflict,
		"IDENTITY_ALREADY_EXISTS",
		"username or email is already taken",
	)

	// ErrInvalidCredentials is the single failure returned by authentication.
	// It never distinguishes "no such identity" from "wrong password".
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid username or password",
	)

	// ErrSessionInvalid is returned when a handle is unknown, revoked, or
	// past its expiry.
	ErrSessionInvalid = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_INVALID",
		"session is invalid, log in again",
	)

	// ErrLoginRequired signals the caller to redirect to the login entry point.
	ErrLoginRequired = NewBaseError(
		http.StatusUnauthorized,
		"LOGIN_REQUIRED",
		"authentication required",
	)

	// ErrAlreadyAuthenticated signals the caller to redirect away from
	// anonymous-only entry points such as signup and login.
	ErrAlreadyAuthenticated = NewBaseError(
		http.StatusForbidden,
		"ALREADY_AUTHENTICATED",
		"already logged in",
	)

	// ErrEntropyUnavailable is fatal for the in-flight operation: no identity
	// or session may be created from a degraded random source.
	ErrEntropyUnavailable = NewBaseError(
		http.StatusInternalServerError,
		"ENTROPY_UNAVAILABLE",
		"secure random source unavailable",
	)

	// ErrHasherBusy is returned when the bounded hashing pool rejects an
	// attempt instead of queueing past the caller's deadline.
	ErrHasherBusy = NewBaseError(
		http.StatusServiceUnavailable,
		"HASHER_BUSY",
		"too many concurrent authentication attempts",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal error",
	)
)

// ValidationError reports every failed field of a registration input together,
// keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty ValidationError ready to collect
// violations.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for the given field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any violation was collected.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed"
}

// HTTPCode returns the HTTP-equivalent status code.
func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code.
func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_FAILED"
}

// Message returns the user-facing error message.
func (e *ValidationError) Message() string {
	return "validation failed"
}
