// Package errors provides domain-specific error types for ipmerge.
//
// Every pipeline stage wraps its failures into an *Error carrying a code, so the
// command layer and tests can tell a configuration problem from a failed download
// or a rejected upload with errors.Is.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration or credentials error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeFetch indicates the archive could not be downloaded.
	ErrCodeFetch ErrorCode = "FETCH_ERROR"

	// ErrCodeArchive indicates the archive could not be extracted.
	ErrCodeArchive ErrorCode = "ARCHIVE_ERROR"

	// ErrCodeList indicates an error reading or writing address lists.
	ErrCodeList ErrorCode = "LIST_ERROR"

	// ErrCodeFilter indicates an invalid exclusion range.
	ErrCodeFilter ErrorCode = "FILTER_ERROR"

	// ErrCodePublish indicates the remote repository rejected or failed a request.
	ErrCodePublish ErrorCode = "PUBLISH_ERROR"

	// ErrCodeConflict indicates the remote file changed since its revision was read.
	ErrCodeConflict ErrorCode = "PUBLISH_CONFLICT"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
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

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err, or any error it wraps, carries the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewFetchError creates a new download error.
func NewFetchError(message string, cause error) *Error {
	return Wrap(ErrCodeFetch, message, cause)
}

// NewArchiveError creates a new extraction error.
func NewArchiveError(message string, cause error) *Error {
	return Wrap(ErrCodeArchive, message, cause)
}

// NewListError creates a new list read/write error.
func NewListError(message string, cause error) *Error {
	return Wrap(ErrCodeList, message, cause)
}

// NewFilterError creates a new exclusion range error.
func NewFilterError(message string, cause error) *Error {
	return Wrap(ErrCodeFilter, message, cause)
}

// NewPublishError creates a new remote publish error.
func NewPublishError(message string, cause error) *Error {
	return Wrap(ErrCodePublish, message, cause)
}

// NewConflictError creates a new stale-revision error.
func NewConflictError(message string, cause error) *Error {
	return Wrap(ErrCodeConflict, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
