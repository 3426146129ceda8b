package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// Input errors: fatal for the request, never retried.
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentOpen     = errors.New("document cannot be opened")

	// Configuration errors: fatal for the affected template.
	ErrTemplateValidation   = errors.New("template validation failed")
	ErrTemplatesDirNotFound = errors.New("templates directory not found")

	// Expected outcomes that callers branch on.
	ErrNoTableFound = errors.New("no table found")

	// External structuring service failures.
	ErrStructuring = errors.New("structuring failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// DocumentNotFoundError reports a missing input path.
func DocumentNotFoundError(path string) error {
	return NewAppError("DOCUMENT_NOT_FOUND", path, ErrDocumentNotFound)
}

// DocumentOpenError reports input that could not be parsed as a document.
func DocumentOpenError(cause error) error {
	return NewAppError("DOCUMENT_OPEN", cause.Error(), ErrDocumentOpen)
}

// TemplatesDirNotFoundError reports a missing templates directory.
func TemplatesDirNotFoundError(dir string) error {
	return NewAppError("TEMPLATES_DIR_NOT_FOUND", dir, ErrTemplatesDirNotFound)
}

// StructuringErrorf reports a failed or malformed structuring response.
func StructuringErrorf(format string, args ...interface{}) error {
	return NewAppError("STRUCTURING_ERROR", fmt.Sprintf(format, args...), ErrStructuring)
}

// IsInputError reports whether err should abort the request without retry.
func IsInputError(err error) bool {
	return errors.Is(err, ErrDocumentNotFound) || errors.Is(err, ErrDocumentOpen)
}

// IsConfigError reports whether err comes from template configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrTemplateValidation) || errors.Is(err, ErrTemplatesDirNotFound)
}
