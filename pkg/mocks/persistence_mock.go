package mocks

import (
	"context"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockConnectionRepository is a mock implementation of persistence.ConnectionRepository interface.
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) GetAll(ctx context.Context) ([]*models.Connection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Connection), args.Error(1)
}

func (m *MockConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, connection *models.Connection) error {
	args := m.Called(ctx, connection)

	return args.Error(0)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockConnectorRepository is a mock implementation of persistence.ConnectorRepository interface.
type MockConnectorRepository struct {
	mock.Mock
}

func (m *MockConnectorRepository) GetAll(ctx context.Context) ([]*models.Connector, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Connector), args.Error(1)
}

func (m *MockConnectorRepository) GetByID(ctx context.Context, id string) (*models.Connector, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Connector), args.Error(1)
}

func (m *MockConnectorRepository) Save(ctx context.Context, connector *models.Connector) error {
	args := m.Called(ctx, connector)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	connectionRepo *MockConnectionRepository
	connectorRepo  *MockConnectorRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		connectionRepo: &MockConnectionRepository{},
		connectorRepo:  &MockConnectorRepository{},
	}
}

func (m *MockPersistence) GetMockConnectionRepository() *MockConnectionRepository {
	return m.connectionRepo
}

func (m *MockPersistence) GetMockConnectorRepository() *MockConnectorRepository {
	return m.connectorRepo
}

func (m *MockPersistence) ConnectionRepository() persistence.ConnectionRepository {
	return m.connectionRepo
}

func (m *MockPersistence) ConnectorRepository() persistence.ConnectorRepository {
	return m.connectorRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
