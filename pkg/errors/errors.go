// Package errors provides the error handling framework shared by the
// planning engine and its HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// Generic codes.
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeCancelled    Code = "CANCELLED"

	// Planning engine codes.
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeConflict         Code = "CONFLICT_ERROR"
	CodeConcurrency      Code = "CONCURRENCY_ERROR"
	CodeDataUnavailable  Code = "DATA_UNAVAILABLE"
	CodeInvalidDateRange Code = "INVALID_DATE_RANGE"
	CodeUnknownSector    Code = "UNKNOWN_SECTOR"
)

// AppError is the application error carried across layers.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches free-form details.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying cause.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField attaches a structured field.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError with the HTTP status derived from the code.
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidation, CodeInvalidDateRange:
		return http.StatusBadRequest
	case CodeNotFound, CodeUnknownSector:
		return http.StatusNotFound
	case CodeConcurrency:
		return http.StatusConflict
	case CodeConflict:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeDataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the code from an error.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus extracts the HTTP status from an error.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Predefined errors.
var (
	ErrNotFound     = New(CodeNotFound, "resource not found")
	ErrInvalidInput = New(CodeInvalidInput, "invalid input")
	ErrInternal     = New(CodeInternal, "internal error")
	ErrTimeout      = New(CodeTimeout, "operation timed out")
)

// InvalidInput creates a field-level input error.
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("invalid field '%s': %s", field, reason))
}

// NotFound creates a missing-resource error.
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, id))
}

// InvalidDateRange creates a date-range validation error.
func InvalidDateRange(start, end string) *AppError {
	return New(CodeInvalidDateRange, fmt.Sprintf("invalid date range %s to %s", start, end))
}

// UnknownSector creates an unknown-sector error.
func UnknownSector(sectorID string) *AppError {
	return New(CodeUnknownSector, fmt.Sprintf("sector '%s' not found", sectorID))
}

// DataUnavailable wraps a collaborator load failure. The run is aborted,
// no partial result is produced.
func DataUnavailable(source string, err error) *AppError {
	return Wrap(err, CodeDataUnavailable, fmt.Sprintf("failed to load %s", source))
}

// PlanningChanged creates the publish re-validation failure. The conflicts
// found against fresh data ride in the fields so the caller can re-generate.
func PlanningChanged(conflicts interface{}) *AppError {
	return New(CodeConcurrency, "planning changed").WithField("new_conflicts", conflicts)
}

// ValidationErrors collects field-level validation problems.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError is a single field problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add appends a field problem.
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any problem was recorded.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError converts the collection to a single AppError.
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidation, "validation failed")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
