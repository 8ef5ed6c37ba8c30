package services

import (
	"context"
	"fmt"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
)

// CredentialsStore keeps credential descriptors and acquisition states.
type CredentialsStore interface {
	Fetch(ctx context.Context, connectorID string) (*models.Credentials, error)
	Register(ctx context.Context, creds *models.Credentials) error
	Acquire(ctx context.Context, connectorID string) (*models.AcquisitionResponse, error)
	ConnectorForState(ctx context.Context, state string) (string, error)
}

type Connector struct {
	persistence persistence.Persistence
	credentials CredentialsStore
}

// NewConnector creates a new connector service. credentials may be nil, in which case every
// credentials call fails with ErrCredentialsUnavailable.
func NewConnector(persistence persistence.Persistence, credentials CredentialsStore) *Connector {
	return &Connector{
		persistence: persistence,
		credentials: credentials,
	}
}

func (c *Connector) List(ctx context.Context) ([]*models.Connector, error) {
	connectors, err := c.persistence.ConnectorRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connectors: %w", err)
	}

	return connectors, nil
}

func (c *Connector) FetchByID(ctx context.Context, id string) (*models.Connector, error) {
	return c.persistence.ConnectorRepository().GetByID(ctx, id)
}

// Load returns the connector definition.
func (c *Connector) Load(ctx context.Context, connectorID string) (*models.Connector, error) {
	return c.FetchByID(ctx, connectorID)
}

// Credentials returns the credential descriptor registered for the connector.
func (c *Connector) Credentials(ctx context.Context, connectorID string) (*models.Credentials, error) {
	if c.credentials == nil {
		return nil, ErrCredentialsUnavailable
	}

	return c.credentials.Fetch(ctx, connectorID)
}

// AcquireCredentials starts credential acquisition for an existing connector.
func (c *Connector) AcquireCredentials(ctx context.Context, connectorID string) (*models.AcquisitionResponse, error) {
	if c.credentials == nil {
		return nil, ErrCredentialsUnavailable
	}

	_, err := c.FetchByID(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	return c.credentials.Acquire(ctx, connectorID)
}

// RegisterCredentials stores the credential descriptor of an existing connector.
func (c *Connector) RegisterCredentials(ctx context.Context, creds *models.Credentials) error {
	if c.credentials == nil {
		return ErrCredentialsUnavailable
	}

	if creds == nil || creds.ConnectorID == "" {
		return NewValidationError("RegisterCredentials", "connector_id_required", "credentials have no connector id", ErrInvalidRequest)
	}

	_, err := c.FetchByID(ctx, creds.ConnectorID)
	if err != nil {
		return err
	}

	return c.credentials.Register(ctx, creds)
}

// ResolveState redeems an acquisition state and returns the connector it was issued for.
func (c *Connector) ResolveState(ctx context.Context, state string) (*models.Connector, error) {
	if c.credentials == nil {
		return nil, ErrCredentialsUnavailable
	}

	if state == "" {
		return nil, NewValidationError("ResolveState", "state_required", "state is required", ErrInvalidRequest)
	}

	connectorID, err := c.credentials.ConnectorForState(ctx, state)
	if err != nil {
		return nil, err
	}

	return c.FetchByID(ctx, connectorID)
}

// Import stores every connector of a catalog and returns how many were saved.
func (c *Connector) Import(ctx context.Context, connectors []*models.Connector) (int, error) {
	for i, connector := range connectors {
		if connector == nil || connector.ID == "" {
			return i, NewValidationError("Import", "connector_id_required", fmt.Sprintf("connector %d has no id", i), ErrInvalidRequest)
		}

		err := c.persistence.ConnectorRepository().Save(ctx, connector)
		if err != nil {
			return i, fmt.Errorf("failed to import connector %s: %w", connector.ID, err)
		}
	}

	return len(connectors), nil
}
