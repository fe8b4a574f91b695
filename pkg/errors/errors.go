package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Discovery errors
	ErrTypeResolution        ErrorCode = "TYPE_RESOLUTION"
	ErrDuplicateRegistration ErrorCode = "DUPLICATE_REGISTRATION"
	ErrCandidateInvalid      ErrorCode = "CANDIDATE_INVALID"
	ErrFacadeUnmatched       ErrorCode = "FACADE_UNMATCHED"

	// Dispatch errors
	ErrSequenceNotConfigured ErrorCode = "SEQUENCE_NOT_CONFIGURED"
	ErrInvalidProxyTarget    ErrorCode = "INVALID_PROXY_TARGET"
	ErrOperationFailure      ErrorCode = "OPERATION_FAILURE"
	ErrIDTypeMismatch        ErrorCode = "ID_TYPE_MISMATCH"
)

// BindError represents a structured error with code and details
type BindError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BindError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BindError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BindError) Is(target error) bool {
	var targetErr *BindError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BindError with the given code and message
func New(code ErrorCode, message string) *BindError {
	return &BindError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BindError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BindError {
	return &BindError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BindError
func Wrap(err error, code ErrorCode, message string) *BindError {
	if err == nil {
		return nil
	}
	return &BindError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BindError {
	if err == nil {
		return nil
	}
	return &BindError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BindError) WithDetail(key string, value interface{}) *BindError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *BindError) WithDetails(details map[string]interface{}) *BindError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return bindErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BindError
func GetErrorCode(err error) ErrorCode {
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return bindErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a BindError
func GetErrorDetails(err error) map[string]interface{} {
	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return bindErr.Details
	}
	return nil
}
