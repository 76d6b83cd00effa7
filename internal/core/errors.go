// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Feed errors
	ErrFetchFailed = &Error{Code: "FETCH_FAILED", Message: "fetching signals failed"}

	// Presenter errors
	ErrOutOfRange   = &Error{Code: "OUT_OF_RANGE", Message: "row index out of range"}
	ErrColorInvalid = &Error{Code: "COLOR_INVALID", Message: "invalid color"}

	// Refresh errors
	ErrRefreshInFlight = &Error{Code: "REFRESH_IN_FLIGHT", Message: "refresh already in flight"}

	// Storage errors
	ErrNotFound        = &Error{Code: "NOT_FOUND", Message: "not found"}
	ErrArchiveFailed   = &Error{Code: "ARCHIVE_FAILED", Message: "archive write failed"}
	ErrHistoryFailed   = &Error{Code: "HISTORY_FAILED", Message: "notification history failed"}
	ErrSubscribeFailed = &Error{Code: "SUBSCRIBE_FAILED", Message: "topic subscription failed"}

	// API errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}
	ErrBadRequest   = &Error{Code: "BAD_REQUEST", Message: "malformed request"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
