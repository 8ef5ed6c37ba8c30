package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Connection struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

// NewConnection creates a new connection service.
func NewConnection(persistence persistence.Persistence) *Connection {
	return &Connection{
		persistence: persistence,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (c *Connection) HealthCheck(ctx context.Context) (string, bool) {
	if c.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := c.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

func (c *Connection) List(ctx context.Context) ([]*models.Connection, error) {
	connections, err := c.persistence.ConnectionRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	return connections, nil
}

func (c *Connection) FetchByID(ctx context.Context, id string) (*models.Connection, error) {
	return c.persistence.ConnectionRepository().GetByID(ctx, id)
}

func (c *Connection) Delete(ctx context.Context, id string) error {
	return c.persistence.ConnectionRepository().Delete(ctx, id)
}

// UpdateOrCreate validates and stores connection. A connection without id is created with a
// new one; an existing connection keeps its creation time.
func (c *Connection) UpdateOrCreate(ctx context.Context, connection *models.Connection) (*models.Connection, error) {
	if connection == nil {
		return nil, NewValidationError("UpdateOrCreate", "connection_required", "connection is required", ErrInvalidRequest)
	}

	err := c.validate.Struct(connection)
	if err != nil {
		return nil, NewValidationError("UpdateOrCreate", "invalid_connection", err.Error(), ErrInvalidRequest)
	}

	toSave := connection.Clone()
	now := time.Now().UTC()

	if toSave.ID == "" {
		toSave.ID = uuid.New().String()
		toSave.CreatedAt = now
	} else if toSave.CreatedAt.IsZero() {
		existing, err := c.persistence.ConnectionRepository().GetByID(ctx, toSave.ID)

		switch {
		case err == nil:
			toSave.CreatedAt = existing.CreatedAt
		case !persistence.IsConnectionNotFound(err):
			return nil, fmt.Errorf("failed to load connection %s: %w", toSave.ID, err)
		default:
			toSave.CreatedAt = now
		}
	}

	toSave.UpdatedAt = now

	err = c.persistence.ConnectionRepository().Save(ctx, toSave)
	if err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	return toSave, nil
}
