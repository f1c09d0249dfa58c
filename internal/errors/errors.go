package errors

import "fmt"

// ErrorCode represents a boardgen error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"     // 404
	ErrSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE" // 502
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// BoardError represents a structured error with code, status, and details.
type BoardError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *BoardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *BoardError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid flags or arguments.
func NewInvalidRequest(msg string) *BoardError {
	return &BoardError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *BoardError {
	return &BoardError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewSourceUnavailable creates a 502 error when a board registry cannot be read.
func NewSourceUnavailable(source string, err error) *BoardError {
	msg := fmt.Sprintf("board source %s unavailable", source)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &BoardError{
		Code:    ErrSourceUnavailable,
		Status:  502,
		Message: msg,
		Details: map[string]any{"source": source},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BoardError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BoardError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is a BoardError with the given code.
func Is(err error, code ErrorCode) bool {
	if bErr, ok := err.(*BoardError); ok {
		return bErr.Code == code
	}
	return false
}
