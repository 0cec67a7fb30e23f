package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a promptbase error code.
type ErrorCode string

const (
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"       // 400
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION" // 400
	ErrForbidden            ErrorCode = "FORBIDDEN"             // 403
	ErrNotFound             ErrorCode = "NOT_FOUND"             // 404
	ErrFileNotFound         ErrorCode = "FILE_NOT_FOUND"        // 404
	ErrValidation           ErrorCode = "VALIDATION_FAILED"     // 422
	ErrInternal             ErrorCode = "INTERNAL"              // 500
)

// PromptError represents a structured error with code, status, and details.
type PromptError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. Store failures keep the driver
	// error here so callers can still match on it.
	Err error
}

// Error implements the error interface.
func (e *PromptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PromptError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PromptError {
	return &PromptError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidConfiguration creates a 400 error for an unrecognized sort or
// filter selection. These are caller bugs and are never defaulted.
func NewInvalidConfiguration(field, value string, allowed []string) *PromptError {
	return &PromptError{
		Code:    ErrInvalidConfiguration,
		Status:  400,
		Message: fmt.Sprintf("unrecognized %s %q (allowed: %s)", field, value, strings.Join(allowed, ", ")),
		Details: map[string]any{"field": field, "value": value, "allowed": allowed},
	}
}

// NewValidation creates a 422 error listing the required fields that were blank.
func NewValidation(missing []string) *PromptError {
	return &PromptError{
		Code:    ErrValidation,
		Status:  422,
		Message: fmt.Sprintf("%s required", joinFields(missing)),
		Details: map[string]any{"missing_fields": missing},
	}
}

// NewForbidden creates a 403 error for a request the server refuses to act on.
func NewForbidden(msg string) *PromptError {
	return &PromptError{
		Code:    ErrForbidden,
		Status:  403,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a prompt cannot be found.
func NewNotFound(id int64) *PromptError {
	return &PromptError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("prompt not found: %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for when an import file cannot be found.
func NewFileNotFound(path string) *PromptError {
	return &PromptError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates a 500 error wrapping an unexpected failure.
func NewInternal(err error) *PromptError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PromptError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a PromptError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PromptError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// As returns the PromptError carried by err, or nil.
func As(err error) *PromptError {
	var pErr *PromptError
	if stderrors.As(err, &pErr) {
		return pErr
	}
	return nil
}

// joinFields renders ["title", "body"] as "title and body".
func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return "fields"
	case 1:
		return fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
}
