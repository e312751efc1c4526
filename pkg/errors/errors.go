// Package errors provides structured error types for the flowedit editor core.
//
// Every operation that crosses the core boundary returns an explicit error value
// carrying a machine-readable [Code]. Shells (CLI, TUI, HTTP) decide how to present
// each category:
//
//   - VALIDATION_REJECTED: a connection rule was violated; show the message, no state change
//   - PRECONDITION_UNMET: nothing to do (no layout root, unknown node); treat as a silent no-op
//   - CYCLE_DETECTED: layout was requested on a cyclic graph; surface explicitly
//   - INVALID_INPUT: malformed arguments (unknown kind, non-finite position)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown node kind: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap package-level sentinels
//	err := errors.Wrap(errors.ErrCodeCycleDetected, layout.ErrCycleDetected, "auto layout")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the editor error taxonomy.
const (
	// Recoverable, surfaced to the user as a message.
	ErrCodeValidationRejected Code = "VALIDATION_REJECTED"

	// Recoverable, treated as a no-op by shells and logged for diagnostics.
	ErrCodePreconditionUnmet Code = "PRECONDITION_UNMET"

	// Layout requested on a graph with a cycle reachable from the root.
	ErrCodeCycleDetected Code = "CYCLE_DETECTED"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidKind  Code = "INVALID_KIND"

	// Resource not found errors
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNoOp reports whether err only signals that there was nothing to do.
// Shells use it to print a notice instead of an error.
func IsNoOp(err error) bool {
	return Is(err, ErrCodePreconditionUnmet)
}
