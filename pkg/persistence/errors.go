package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrConnectionNotFound indicates a connection was not found by the given identifier.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrConnectorNotFound indicates a connector was not found by the given identifier.
	ErrConnectorNotFound = errors.New("connector not found")

	// ErrInvalidID indicates an identifier that cannot be stored.
	ErrInvalidID = errors.New("invalid identifier")
)

// ConnectionError wraps connection-related errors with additional context.
type ConnectionError struct {
	Op           string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	ConnectionID string
	Err          error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s operation failed for connection %s: %v", e.Op, e.ConnectionID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConnectionError creates a new connection error with context.
func NewConnectionError(op, connectionID string, err error) *ConnectionError {
	return &ConnectionError{
		Op:           op,
		ConnectionID: connectionID,
		Err:          err,
	}
}

// ConnectorError wraps connector-related errors with additional context.
type ConnectorError struct {
	Op          string
	ConnectorID string
	Err         error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("%s operation failed for connector %s: %v", e.Op, e.ConnectorID, e.Err)
}

func (e *ConnectorError) Unwrap() error {
	return e.Err
}

func (e *ConnectorError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConnectorError creates a new connector error with context.
func NewConnectorError(op, connectorID string, err error) *ConnectorError {
	return &ConnectorError{
		Op:          op,
		ConnectorID: connectorID,
		Err:         err,
	}
}

// IsConnectionNotFound checks if an error indicates a connection was not found.
func IsConnectionNotFound(err error) bool {
	return errors.Is(err, ErrConnectionNotFound)
}

// IsConnectorNotFound checks if an error indicates a connector was not found.
func IsConnectorNotFound(err error) bool {
	return errors.Is(err, ErrConnectorNotFound)
}

// IsInvalidID checks if an error indicates an identifier that cannot be stored.
func IsInvalidID(err error) bool {
	return errors.Is(err, ErrInvalidID)
}
