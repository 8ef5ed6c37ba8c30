package mocks

import (
	"context"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockConnectionStore is a mock implementation of coordinator.ConnectionStore interface.
type MockConnectionStore struct {
	mock.Mock
}

func (m *MockConnectionStore) UpdateOrCreate(ctx context.Context, connection *models.Connection) (*models.Connection, error) {
	args := m.Called(ctx, connection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Connection), args.Error(1)
}

// MockConnectorStore is a mock implementation of coordinator.ConnectorStore interface.
type MockConnectorStore struct {
	mock.Mock
}

func (m *MockConnectorStore) Load(ctx context.Context, connectorID string) (*models.Connector, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Connector), args.Error(1)
}

func (m *MockConnectorStore) Credentials(ctx context.Context, connectorID string) (*models.Credentials, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Credentials), args.Error(1)
}

func (m *MockConnectorStore) AcquireCredentials(ctx context.Context, connectorID string) (*models.AcquisitionResponse, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AcquisitionResponse), args.Error(1)
}
