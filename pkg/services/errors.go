// Package services provides the connection and connector operations used by the API, the CLI
// and the coordinator.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/operion-connections/pkg/credentials"
	"github.com/dukex/operion-connections/pkg/persistence"
	"github.com/dukex/operion-connections/pkg/validation"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidFilter    = errors.New("invalid filter")

	// Dependency Errors (503 Service Unavailable).
	ErrCredentialsUnavailable = errors.New("credentials store not configured")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidFilter) ||
		validation.IsInvalidProperties(err) ||
		persistence.IsInvalidID(err)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsConnectionNotFound(err) ||
		persistence.IsConnectorNotFound(err) ||
		errors.Is(err, credentials.ErrUnknownState)
}

// IsUnavailableError checks if an error is caused by a missing dependency and should return HTTP 503.
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrCredentialsUnavailable)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
