// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewForbiddenError creates a 403 Forbidden error
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// domainStatus maps scaler error codes to HTTP statuses.
var domainStatus = map[apperrors.Code]int{
	apperrors.CodeInvalidScale:   http.StatusBadRequest,
	apperrors.CodeArchiveFormat:  http.StatusBadRequest,
	apperrors.CodeMalformedScene: http.StatusUnprocessableEntity,
	apperrors.CodeOutputWrite:    http.StatusInternalServerError,
	apperrors.CodeCancelled:      http.StatusServiceUnavailable,
}

// FromDomainError converts a scaler error into an APIError. Errors without
// a domain code become internal errors.
func FromDomainError(err error) *APIError {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return NewInternalError("scaling failed", err)
	}

	status, ok := domainStatus[domainErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	apiErr := &APIError{
		Status:  status,
		Code:    string(domainErr.Code),
		Message: domainErr.Message,
	}
	if domainErr.Cause != nil {
		apiErr.Details = domainErr.Cause.Error()
	}
	if len(domainErr.Metadata) > 0 {
		apiErr.Meta = domainErr.Metadata
	}
	return apiErr
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	var domainErr *apperrors.Error

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &domainErr):
		apiErr = FromDomainError(domainErr)
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
			Details: err.Error(),
		}
	}

	c.JSON(apiErr.Status, apiErr)
}
