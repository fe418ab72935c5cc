// Package errors provides a lightweight structured error type (PacpanError)
// for category-based classification of configuration, build and filesystem
// failures, and the exit codes the CLI derives from them.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a pacpan error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// PacpanError is a structured error with category, severity and context
type PacpanError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PacpanError
type ContextFields map[string]any

// Error implements the error interface
func (e *PacpanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *PacpanError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *PacpanError) WithContext(key string, value any) *PacpanError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PacpanError
func New(category ErrorCategory, severity ErrorSeverity, message string) *PacpanError {
	return &PacpanError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PacpanError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PacpanError {
	return &PacpanError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As finds the first PacpanError in err's chain.
func As(err error) (*PacpanError, bool) {
	var pe *PacpanError
	if stdErrors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if pe, ok := As(err); ok {
		return pe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a PacpanError
func GetCategory(err error) ErrorCategory {
	if pe, ok := As(err); ok {
		return pe.Category
	}
	return CategoryInternal
}
