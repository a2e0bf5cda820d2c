package errors

import (
	"errors"
	"fmt"
	"net/http"

	"print-ticket-server/internal/domain"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeDocument      ErrorType = "document"
	ErrorTypeUnauthorized  ErrorType = "unauthorized"
	ErrorTypeForbidden     ErrorType = "forbidden"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeConcurrency   ErrorType = "concurrency"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// FromDomain maps a domain error onto the structured kind surfaced to
// callers. Internal partial state is never exposed.
func FromDomain(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrEmptyUpload),
		errors.Is(err, domain.ErrInvalidFilename),
		errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrInvalidStatus):
		return &AppError{
			Type:       ErrorTypeValidation,
			Message:    err.Error(),
			StatusCode: http.StatusBadRequest,
			Cause:      err,
		}
	case errors.Is(err, domain.ErrDocumentEmpty),
		errors.Is(err, domain.ErrDocumentCorrupt):
		return &AppError{
			Type:       ErrorTypeDocument,
			Message:    err.Error(),
			StatusCode: http.StatusUnprocessableEntity,
			Cause:      err,
		}
	case errors.Is(err, domain.ErrInvalidToken):
		return &AppError{
			Type:       ErrorTypeUnauthorized,
			Message:    "invalid token",
			StatusCode: http.StatusUnauthorized,
			Cause:      err,
		}
	case errors.Is(err, domain.ErrForbidden):
		return &AppError{
			Type:       ErrorTypeForbidden,
			Message:    "forbidden",
			StatusCode: http.StatusForbidden,
			Cause:      err,
		}
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrFileNotFound):
		return &AppError{
			Type:       ErrorTypeNotFound,
			Message:    err.Error(),
			StatusCode: http.StatusNotFound,
			Cause:      err,
		}
	case errors.Is(err, domain.ErrDuplicateTicket):
		return &AppError{
			Type:       ErrorTypeConcurrency,
			Message:    "submission collided, please retry",
			StatusCode: http.StatusInternalServerError,
			Cause:      err,
		}
	default:
		return &AppError{
			Type:       ErrorTypeInternal,
			Message:    "internal error",
			StatusCode: http.StatusInternalServerError,
			Cause:      err,
		}
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
