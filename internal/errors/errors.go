package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a sigdecode error code.
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"        // 400
	ErrNotFound              ErrorCode = "NOT_FOUND"              // 404
	ErrFileNotFound          ErrorCode = "FILE_NOT_FOUND"         // 404
	ErrSignalUnreadable      ErrorCode = "SIGNAL_UNREADABLE"      // 422
	ErrDictionaryUnavailable ErrorCode = "DICTIONARY_UNAVAILABLE" // 503
	ErrInternal              ErrorCode = "INTERNAL"               // 500
)

// SigError represents a structured error with code, status, and details.
type SigError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SigError {
	return &SigError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a recorded run cannot be found.
func NewNotFound(id string) *SigError {
	return &SigError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("run not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for when a file path does not exist.
func NewFileNotFound(path string) *SigError {
	return &SigError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewSignalUnreadable creates a 422 error when the signal file cannot be read.
func NewSignalUnreadable(path string, cause error) *SigError {
	msg := fmt.Sprintf("cannot read signal file %s", path)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &SigError{
		Code:    ErrSignalUnreadable,
		Status:  422,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewDictionaryUnavailable creates a 503 error when the word list cannot be loaded.
func NewDictionaryUnavailable(path string, cause error) *SigError {
	msg := fmt.Sprintf("dictionary unavailable at %s", path)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &SigError{
		Code:    ErrDictionaryUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SigError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SigError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a SigError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SigError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
