// Package persistence provides the storage abstraction for connections and connectors.
package persistence

import (
	"context"

	"github.com/dukex/operion-connections/pkg/models"
)

type Persistence interface {
	ConnectionRepository() ConnectionRepository
	ConnectorRepository() ConnectorRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// ConnectionRepository stores configured connections.
type ConnectionRepository interface {
	GetAll(ctx context.Context) ([]*models.Connection, error)
	// GetByID returns ErrConnectionNotFound when no connection has the id.
	GetByID(ctx context.Context, id string) (*models.Connection, error)
	// Save creates the connection or replaces the stored one with the same id.
	Save(ctx context.Context, connection *models.Connection) error
	Delete(ctx context.Context, id string) error
}

// ConnectorRepository stores the connector catalog.
type ConnectorRepository interface {
	GetAll(ctx context.Context) ([]*models.Connector, error)
	// GetByID returns ErrConnectorNotFound when no connector has the id.
	GetByID(ctx context.Context, id string) (*models.Connector, error)
	Save(ctx context.Context, connector *models.Connector) error
}
