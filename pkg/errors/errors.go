// Package errors provides structured error types for depends.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code names one failure class of the analyzers:
//   - INVALID_INPUT: bad paths, unknown frameworks, malformed identities
//   - UNSUPPORTED_PROJECT: project files that are not SDK-style
//   - MISSING_RESOLVED_STATE: no project.assets.json; run dotnet restore
//   - METADATA_NOT_FOUND: a package identity unknown to every source
//   - UNSATISFIABLE_CONSTRAINTS: the solver found no consistent selection
//   - NETWORK_ERROR, TIMEOUT: transport failures talking to a feed
//   - INTERNAL_ERROR: everything unexpected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown framework: %s", tfm)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeUnsupportedProject   Code = "UNSUPPORTED_PROJECT"
	ErrCodeMissingResolvedState Code = "MISSING_RESOLVED_STATE"

	// Resolution errors
	ErrCodeMetadataNotFound         Code = "METADATA_NOT_FOUND"
	ErrCodeUnsatisfiableConstraints Code = "UNSATISFIABLE_CONSTRAINTS"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

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

// ExitCode maps an error to a process exit status. Input problems the user
// can fix exit 2, everything else exits 1.
func ExitCode(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeUnsupportedProject, ErrCodeMissingResolvedState:
		return 2
	default:
		return 1
	}
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
