package file

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
)

// ConnectionRepository handles connection-related file operations.
type ConnectionRepository struct {
	documents *documents[models.Connection]
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(root string) *ConnectionRepository {
	return &ConnectionRepository{documents: newDocuments[models.Connection](root, "connections")}
}

// GetAll returns every stored connection ordered by id.
func (cr *ConnectionRepository) GetAll(_ context.Context) ([]*models.Connection, error) {
	connections, err := cr.documents.all()
	if err != nil {
		return nil, persistence.NewConnectionError("GetAll", "", err)
	}

	return connections, nil
}

// GetByID retrieves a connection by its ID from the file system.
func (cr *ConnectionRepository) GetByID(_ context.Context, id string) (*models.Connection, error) {
	connection, err := cr.documents.read(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewConnectionError("GetByID", id, persistence.ErrConnectionNotFound)
		}

		return nil, persistence.NewConnectionError("GetByID", id, err)
	}

	return connection, nil
}

// Save saves a connection to the file system.
func (cr *ConnectionRepository) Save(_ context.Context, connection *models.Connection) error {
	now := time.Now().UTC()
	if connection.CreatedAt.IsZero() {
		connection.CreatedAt = now
	}

	connection.UpdatedAt = now

	err := cr.documents.write(connection.ID, connection)
	if err != nil {
		return persistence.NewConnectionError("Save", connection.ID, err)
	}

	return nil
}

// Delete removes a connection by its ID.
func (cr *ConnectionRepository) Delete(_ context.Context, id string) error {
	err := cr.documents.remove(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewConnectionError("Delete", id, persistence.ErrConnectionNotFound)
		}

		return persistence.NewConnectionError("Delete", id, err)
	}

	return nil
}
