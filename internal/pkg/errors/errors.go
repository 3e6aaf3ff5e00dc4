package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for each error type
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	ErrCodeConflict   ErrorCode = "CONFLICT"

	// Record / column errors
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFieldType ErrorCode = "INVALID_FIELD_TYPE"

	// Linguistic resource errors
	ErrCodeResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"

	// File processing errors
	ErrCodeInvalidFile       ErrorCode = "INVALID_FILE"
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrCodeFileParseError    ErrorCode = "FILE_PARSE_ERROR"

	// Database errors
	ErrCodeDatabaseError  ErrorCode = "DATABASE_ERROR"
	ErrCodeRecordNotFound ErrorCode = "RECORD_NOT_FOUND"

	// Queue errors
	ErrCodeQueueError ErrorCode = "QUEUE_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional context to the error
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func InternalWrap(err error, message string) *AppError {
	return Wrap(err, ErrCodeInternal, message)
}

func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message)
}

func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// Record / column errors

// MissingField reports a record that lacks the column being transformed.
func MissingField(column string, rowIndex int) *AppError {
	return New(ErrCodeMissingField,
		fmt.Sprintf("record %d has no %q field", rowIndex, column)).
		WithDetails("column", column).
		WithDetails("row_index", rowIndex)
}

// InvalidFieldType reports a column value that is not a string.
func InvalidFieldType(column string, rowIndex int, value interface{}) *AppError {
	return New(ErrCodeInvalidFieldType,
		fmt.Sprintf("record %d field %q is %T, expected string", rowIndex, column, value)).
		WithDetails("column", column).
		WithDetails("row_index", rowIndex)
}

// Linguistic resource errors

func ResourceUnavailable(resource string, err error) *AppError {
	return Wrap(err, ErrCodeResourceUnavailable,
		fmt.Sprintf("linguistic resource unavailable: %s", resource)).
		WithDetails("resource", resource)
}

// File processing errors

func InvalidFile(message string) *AppError {
	return New(ErrCodeInvalidFile, message)
}

func UnsupportedFormat(format string) *AppError {
	return New(ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported file format: %s", format))
}

func FileParseError(err error, path string) *AppError {
	return Wrap(err, ErrCodeFileParseError, "failed to parse dataset file").
		WithDetails("path", path)
}

// Database errors

func DatabaseError(err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, "database operation failed")
}

func RecordNotFound(resource string) *AppError {
	return New(ErrCodeRecordNotFound,
		fmt.Sprintf("%s not found", resource))
}

// Queue errors

func QueueError(err error) *AppError {
	return Wrap(err, ErrCodeQueueError, "queue operation failed")
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether the error chain holds an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.Code == code
}
