package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	// Document-level failure. Aborts the whole batch before any page work starts.
	ErrorTypeDocumentOpen ErrorType = "document_open"
	// Page-scoped failures, reported inline as error page results.
	ErrorTypeOCRService          ErrorType = "ocr_service"
	ErrorTypeSchedulerSubmission ErrorType = "scheduler_submission"
	// Logged only.
	ErrorTypeResourceCleanup ErrorType = "resource_cleanup"

	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeSystem     ErrorType = "system"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeNotFound   ErrorType = "not_found"
)

// AppError represents an application-specific error
type AppError struct {
	Type        ErrorType
	Message     string
	Cause       error
	Recoverable bool
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// NewError creates a new application error
func NewError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewDocumentOpenError reports a document that could not be opened or rasterized
func NewDocumentOpenError(message string, cause error) *AppError {
	return NewError(ErrorTypeDocumentOpen, message, cause)
}

// NewOCRServiceError reports a failed text detection call. Transient causes
// (network, deadline, quota) are marked recoverable.
func NewOCRServiceError(message string, cause error) *AppError {
	e := NewError(ErrorTypeOCRService, message, cause)
	if cause != nil {
		switch classifyError(cause) {
		case ErrorTypeTimeout, ErrorTypeNetwork:
			e.Recoverable = !errors.Is(cause, context.Canceled)
		}
	}
	return e
}

// NewResourceCleanupError reports a transient resource that could not be removed
func NewResourceCleanupError(message string, cause error) *AppError {
	return NewError(ErrorTypeResourceCleanup, message, cause)
}

// NewSchedulerSubmissionError reports a page task that could not be scheduled
func NewSchedulerSubmissionError(message string, cause error) *AppError {
	return NewError(ErrorTypeSchedulerSubmission, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewError(ErrorTypeValidation, message, cause)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	// An empty type keeps the wrapped AppError's classification
	var appErr *AppError
	if errors.As(err, &appErr) && errorType == "" {
		return &AppError{
			Type:        appErr.Type,
			Message:     message + ": " + appErr.Message,
			Cause:       appErr.Cause,
			Recoverable: appErr.Recoverable,
		}
	}

	if errorType == "" {
		errorType = classifyError(err)
	}

	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   err,
	}
}

// classifyError automatically classifies an error based on its content
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSystem
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return ErrorTypeTimeout
	case strings.Contains(errStr, "deadline") || strings.Contains(errStr, "timeout"):
		return ErrorTypeTimeout
	case strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access denied"):
		return ErrorTypePermission
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return ErrorTypeNotFound
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "unavailable") || strings.Contains(errStr, "resource exhausted"):
		return ErrorTypeNetwork
	case strings.Contains(errStr, "convert") || strings.Contains(errStr, "parsing"):
		return ErrorTypeConversion
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad"):
		return ErrorTypeValidation
	default:
		return ErrorTypeSystem
	}
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}

	switch classifyError(err) {
	case ErrorTypeTimeout, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return classifyError(err)
}
