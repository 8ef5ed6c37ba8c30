package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/operion-connections/pkg/credentials"
	"github.com/dukex/operion-connections/pkg/mocks"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCredentialsStore struct {
	mock.Mock
}

func (m *mockCredentialsStore) Fetch(ctx context.Context, connectorID string) (*models.Credentials, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Credentials), args.Error(1)
}

func (m *mockCredentialsStore) Acquire(ctx context.Context, connectorID string) (*models.AcquisitionResponse, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.AcquisitionResponse), args.Error(1)
}

func (m *mockCredentialsStore) Register(ctx context.Context, creds *models.Credentials) error {
	args := m.Called(ctx, creds)

	return args.Error(0)
}

func (m *mockCredentialsStore) ConnectorForState(ctx context.Context, state string) (string, error) {
	args := m.Called(ctx, state)

	return args.String(0), args.Error(1)
}

func newConnectorService(t *testing.T, store CredentialsStore) *Connector {
	t.Helper()

	service := NewConnector(file.NewPersistence(t.TempDir()), store)

	count, err := service.Import(t.Context(), []*models.Connector{
		{ID: "twitter", Name: "Twitter"},
		{ID: "salesforce", Name: "Salesforce"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	return service
}

func TestConnector_ListAndLoad(t *testing.T) {
	service := newConnectorService(t, nil)

	connectors, err := service.List(t.Context())
	require.NoError(t, err)
	require.Len(t, connectors, 2)

	connector, err := service.Load(t.Context(), "twitter")
	require.NoError(t, err)
	assert.Equal(t, "Twitter", connector.Name)

	_, err = service.Load(t.Context(), "slack")
	assert.True(t, IsNotFoundError(err))
}

func TestConnector_ImportRequiresID(t *testing.T) {
	service := NewConnector(file.NewPersistence(t.TempDir()), nil)

	count, err := service.Import(t.Context(), []*models.Connector{{ID: "twitter"}, {Name: "anonymous"}})
	assert.Equal(t, 1, count)
	assert.True(t, IsValidationError(err))
}

func TestConnector_CredentialsUnavailable(t *testing.T) {
	service := newConnectorService(t, nil)

	_, err := service.Credentials(t.Context(), "twitter")
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)
	assert.True(t, IsUnavailableError(err))

	_, err = service.AcquireCredentials(t.Context(), "twitter")
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)

	err = service.RegisterCredentials(t.Context(), &models.Credentials{ConnectorID: "twitter"})
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)

	_, err = service.ResolveState(t.Context(), "s1")
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)
}

func TestConnector_RegisterCredentials(t *testing.T) {
	store := &mockCredentialsStore{}
	store.On("Register", mock.Anything, mock.MatchedBy(func(creds *models.Credentials) bool {
		return creds.ConnectorID == "twitter" && creds.Type == "oauth2"
	})).Return(nil).Once()

	service := newConnectorService(t, store)

	require.NoError(t, service.RegisterCredentials(t.Context(), &models.Credentials{ConnectorID: "twitter", Type: "oauth2"}))

	err := service.RegisterCredentials(t.Context(), &models.Credentials{ConnectorID: "slack", Type: "oauth2"})
	assert.True(t, IsNotFoundError(err))

	err = service.RegisterCredentials(t.Context(), &models.Credentials{Type: "oauth2"})
	assert.True(t, IsValidationError(err))

	store.AssertExpectations(t)
}

func TestConnector_ResolveState(t *testing.T) {
	store := &mockCredentialsStore{}
	store.On("ConnectorForState", mock.Anything, "s1").Return("twitter", nil).Once()
	store.On("ConnectorForState", mock.Anything, "expired").Return("", credentials.ErrUnknownState).Once()

	service := newConnectorService(t, store)

	connector, err := service.ResolveState(t.Context(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Twitter", connector.Name)

	_, err = service.ResolveState(t.Context(), "expired")
	assert.True(t, IsNotFoundError(err))

	_, err = service.ResolveState(t.Context(), "")
	assert.True(t, IsValidationError(err))

	store.AssertExpectations(t)
}

func TestConnector_Credentials(t *testing.T) {
	store := &mockCredentialsStore{}
	store.On("Fetch", mock.Anything, "twitter").Return(&models.Credentials{ConnectorID: "twitter", Type: "oauth2"}, nil)
	store.On("Acquire", mock.Anything, "twitter").Return(&models.AcquisitionResponse{ConnectorID: "twitter", State: "s1"}, nil)

	service := newConnectorService(t, store)

	creds, err := service.Credentials(t.Context(), "twitter")
	require.NoError(t, err)
	assert.True(t, creds.Present())

	resp, err := service.AcquireCredentials(t.Context(), "twitter")
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.State)

	_, err = service.AcquireCredentials(t.Context(), "slack")
	assert.True(t, IsNotFoundError(err))

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Acquire", mock.Anything, "slack")
}

func TestConnector_ImportStopsOnSaveFailure(t *testing.T) {
	p := mocks.NewMockPersistence()
	repo := p.GetMockConnectorRepository()

	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *models.Connector) bool { return c.ID == "twitter" })).Return(nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(c *models.Connector) bool { return c.ID == "salesforce" })).Return(errors.New("disk full"))

	count, err := NewConnector(p, nil).Import(t.Context(), []*models.Connector{
		{ID: "twitter"},
		{ID: "salesforce"},
		{ID: "sql"},
	})
	require.Error(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, err.Error(), "salesforce")
	repo.AssertNumberOfCalls(t, "Save", 2)
}
