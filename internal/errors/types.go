package errors

import (
	"errors"
	"io/fs"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeUsage  ErrorType = "usage"
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeOpen   ErrorType = "open"
	ErrorTypeRead   ErrorType = "read"
	ErrorTypeWrite  ErrorType = "write"
)

// Common error codes.
const (
	ErrCodeUsage  = "ERR_USAGE"
	ErrCodeConfig = "ERR_CONFIG"
	ErrCodeOpen   = "ERR_OPEN"
	ErrCodeRead   = "ERR_READ"
	ErrCodeWrite  = "ERR_WRITE"
)

// CatrError is a structured error type carrying its severity.
//
// Recoverable errors affect a single source and the run moves on to the
// next one. Everything else aborts the run.
type CatrError struct {
	Type        ErrorType
	Code        string
	Source      string
	Message     string
	Cause       error
	Recoverable bool
}

// Error implements the error interface. The rendering doubles as the
// user-facing diagnostic, so it is "<source>: <message>: <cause>" with empty
// parts left out.
func (e *CatrError) Error() string {
	var parts []string

	if e.Source != "" {
		parts = append(parts, e.Source)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause error.
func (e *CatrError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *CatrError) Is(target error) bool {
	var t *CatrError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// NewUsageError creates a usage error for bad or conflicting flags.
func NewUsageError(message string) *CatrError {
	return &CatrError{
		Type:    ErrorTypeUsage,
		Code:    ErrCodeUsage,
		Message: message,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *CatrError {
	return &CatrError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfig,
		Message: message,
		Cause:   cause,
	}
}

// NewOpenError creates a recoverable error for a source that could not be
// opened. A *fs.PathError cause is unwrapped since the source already names
// the path.
func NewOpenError(source string, cause error) *CatrError {
	return &CatrError{
		Type:        ErrorTypeOpen,
		Code:        ErrCodeOpen,
		Source:      source,
		Cause:       unwrapPath(cause),
		Recoverable: true,
	}
}

// NewReadError creates a fatal error for a failure while reading an open
// source.
func NewReadError(source string, cause error) *CatrError {
	return &CatrError{
		Type:   ErrorTypeRead,
		Code:   ErrCodeRead,
		Source: source,
		Cause:  unwrapPath(cause),
	}
}

// NewWriteError creates a fatal error for a failed write to the output.
func NewWriteError(cause error) *CatrError {
	return &CatrError{
		Type:    ErrorTypeWrite,
		Code:    ErrCodeWrite,
		Message: "write output",
		Cause:   cause,
	}
}

func unwrapPath(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err
	}

	return err
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ce *CatrError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}

	return false
}

// IsUsageError checks if an error is a usage error.
func IsUsageError(err error) bool {
	return isType(err, ErrorTypeUsage)
}

// IsOpenError checks if an error is a per-source open error.
func IsOpenError(err error) bool {
	return isType(err, ErrorTypeOpen)
}

// IsReadError checks if an error is a mid-stream read error.
func IsReadError(err error) bool {
	return isType(err, ErrorTypeRead)
}

func isType(err error, t ErrorType) bool {
	var ce *CatrError
	if errors.As(err, &ce) {
		return ce.Type == t
	}

	return false
}
