package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeForecast   ErrorType = "FORECAST"
)

// Sentinel pipeline errors. Each aborts processing for the affected ZIP only;
// the runner records the skip and continues with the remaining ZIPs.
var (
	// ErrDataNotFound is returned when no rows in the raw file match the
	// configured target region.
	ErrDataNotFound = errors.New("no rows match the target region")

	// ErrInsufficientHistory is returned when a ZIP has fewer than two
	// distinct years of observations, which is too little to project from.
	ErrInsufficientHistory = errors.New("insufficient yearly history")

	// ErrInvalidPrice is returned when a ZIP's current price is zero or
	// negative, which makes the growth-rate math undefined.
	ErrInvalidPrice = errors.New("non-positive current price")
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// Kind maps a pipeline error to the short reason label used in run
// manifests and skip reports.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDataNotFound):
		return "DATA_NOT_FOUND"
	case errors.Is(err, ErrInsufficientHistory):
		return "INSUFFICIENT_HISTORY"
	case errors.Is(err, ErrInvalidPrice):
		return "INVALID_PRICE"
	default:
		return "INTERNAL"
	}
}
