package file

import (
	"context"
	"errors"
	"io/fs"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
)

// ConnectorRepository handles the connector catalog stored on the file system.
type ConnectorRepository struct {
	documents *documents[models.Connector]
}

// NewConnectorRepository creates a new connector repository.
func NewConnectorRepository(root string) *ConnectorRepository {
	return &ConnectorRepository{documents: newDocuments[models.Connector](root, "connectors")}
}

func (cr *ConnectorRepository) GetAll(_ context.Context) ([]*models.Connector, error) {
	connectors, err := cr.documents.all()
	if err != nil {
		return nil, persistence.NewConnectorError("GetAll", "", err)
	}

	return connectors, nil
}

func (cr *ConnectorRepository) GetByID(_ context.Context, id string) (*models.Connector, error) {
	connector, err := cr.documents.read(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewConnectorError("GetByID", id, persistence.ErrConnectorNotFound)
		}

		return nil, persistence.NewConnectorError("GetByID", id, err)
	}

	return connector, nil
}

// Save stores the connector with its property values stripped.
func (cr *ConnectorRepository) Save(_ context.Context, connector *models.Connector) error {
	stored := connector.Clone()
	stored.StripPropertyValues()

	err := cr.documents.write(stored.ID, stored)
	if err != nil {
		return persistence.NewConnectorError("Save", connector.ID, err)
	}

	return nil
}
