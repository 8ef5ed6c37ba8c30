package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukex/operion-connections/pkg/credentials"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence/file"
	"github.com/dukex/operion-connections/pkg/services"
	"github.com/dukex/operion-connections/pkg/wizard"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
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

type testEnv struct {
	app         *fiber.App
	connections *services.Connection
	credentials *mockCredentialsStore
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	persistence := file.NewPersistence(t.TempDir())
	store := &mockCredentialsStore{}

	connectionService := services.NewConnection(persistence)
	connectorService := services.NewConnector(persistence, store)

	_, err := connectorService.Import(t.Context(), []*models.Connector{
		{
			ID:          "sql",
			Name:        "Database",
			Description: "Relational database",
			Icon:        "db.svg",
			Properties: map[string]*models.ConnectorProperty{
				"url":  {DisplayName: "URL", Type: models.PropertyTypeString, Required: true},
				"port": {DisplayName: "Port", Type: models.PropertyTypeInteger},
			},
		},
		{ID: "twitter", Name: "Twitter", Description: "Social network"},
	})
	require.NoError(t, err)

	drafts := wizard.NewManager(t.Context(), connectionService, connectorService, logger)
	t.Cleanup(func() { _ = drafts.Close() })

	handlers := NewAPIHandlers(connectionService, connectorService, drafts, validator.New(validator.WithRequiredStructEnabled()), logger)

	app := fiber.New()
	handlers.RegisterRoutes(app)

	return &testEnv{app: app, connections: connectionService, credentials: store}
}

func (env *testEnv) do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.app.Test(req)
	require.NoError(t, err)

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func (env *testEnv) seed(t *testing.T, connections ...*models.Connection) {
	t.Helper()

	for _, connection := range connections {
		_, err := env.connections.UpdateOrCreate(t.Context(), connection)
		require.NoError(t, err)
	}
}

func TestHealthCheck(t *testing.T) {
	env := setupTestApp(t)

	resp := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestListConnections_FilterAndSort(t *testing.T) {
	env := setupTestApp(t)
	env.seed(t,
		&models.Connection{ID: "c1", Name: "Orders", Tags: []string{"db", "prod"}, ConnectorID: "sql"},
		&models.Connection{ID: "c2", Name: "Mentions", Tags: []string{"social"}, ConnectorID: "twitter"},
		&models.Connection{ID: "c3", Name: "Archive", Tags: []string{"db"}, ConnectorID: "sql"},
	)

	t.Run("all connections", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/connections", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[ListResponse[models.Connection]](t, resp)
		assert.Equal(t, 3, body.ResultsCount)
		assert.Len(t, body.Items, 3)

		ids := make([]string, 0, len(body.Toolbar.FilterConfig.Fields))
		for _, field := range body.Toolbar.FilterConfig.Fields {
			ids = append(ids, field.ID)
		}

		assert.Contains(t, ids, "tag")
	})

	t.Run("tag filter sorted descending", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/connections?tag=db&sort_by=name&sort_order=desc", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[ListResponse[models.Connection]](t, resp)
		require.Len(t, body.Items, 2)
		assert.Equal(t, "Orders", body.Items[0].Name)
		assert.Equal(t, "Archive", body.Items[1].Name)
		assert.Equal(t, 2, body.ResultsCount)
		assert.False(t, body.Toolbar.SortConfig.IsAscending)
	})

	t.Run("name filter is a case-insensitive substring", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/connections?filter=name:MENT", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[ListResponse[models.Connection]](t, resp)
		require.Len(t, body.Items, 1)
		assert.Equal(t, "c2", body.Items[0].ID)
	})

	t.Run("malformed filter", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/connections?filter=name", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown sort field", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/connections?sort_by=color", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid sort order", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/connections?sort_order=sideways", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestConnectionByID(t *testing.T) {
	env := setupTestApp(t)
	env.seed(t, &models.Connection{ID: "c1", Name: "Orders", ConnectorID: "sql"})

	resp := env.do(t, http.MethodGet, "/connections/c1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Orders", decode[models.Connection](t, resp).Name)

	resp = env.do(t, http.MethodDelete, "/connections/c1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/connections/c1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/connections/c1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConnectors(t *testing.T) {
	env := setupTestApp(t)
	env.credentials.On("Fetch", mock.Anything, "twitter").
		Return(&models.Credentials{ConnectorID: "twitter", Type: "oauth2", Configured: true}, nil)

	resp := env.do(t, http.MethodGet, "/connectors?filter=description:social", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := decode[ListResponse[models.Connector]](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "twitter", list.Items[0].ID)

	resp = env.do(t, http.MethodGet, "/connectors/sql", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Database", decode[models.Connector](t, resp).Name)

	resp = env.do(t, http.MethodGet, "/connectors/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/connectors/twitter/credentials", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "oauth2", decode[models.Credentials](t, resp).Type)
}

func TestRegisterConnectorCredentials(t *testing.T) {
	env := setupTestApp(t)
	env.credentials.On("Register", mock.Anything, mock.MatchedBy(func(creds *models.Credentials) bool {
		return creds.ConnectorID == "twitter" && creds.Type == "oauth2" && creds.AuthorizationURL == "https://auth.example.com/authorize"
	})).Return(nil).Once()

	resp := env.do(t, http.MethodPut, "/connectors/twitter/credentials",
		`{"type":"oauth2","label":"Twitter account","authorization_url":"https://auth.example.com/authorize"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "twitter", decode[models.Credentials](t, resp).ConnectorID)

	resp = env.do(t, http.MethodPut, "/connectors/missing/credentials", `{"type":"oauth2"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/connectors/twitter/credentials", `{"label":"no type"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.credentials.AssertExpectations(t)
}

func TestCredentialsCallback(t *testing.T) {
	env := setupTestApp(t)
	env.credentials.On("ConnectorForState", mock.Anything, "s1").Return("twitter", nil).Once()
	env.credentials.On("ConnectorForState", mock.Anything, "s1").Return("", credentials.ErrUnknownState).Once()

	resp := env.do(t, http.MethodGet, "/credentials/callback?state=s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[CredentialsCallbackResponse](t, resp)
	assert.Equal(t, "twitter", body.ConnectorID)
	assert.Equal(t, "s1", body.State)
	require.NotNil(t, body.Connector)
	assert.Equal(t, "Twitter", body.Connector.Name)

	resp = env.do(t, http.MethodGet, "/credentials/callback?state=s1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/credentials/callback", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.credentials.AssertExpectations(t)
}

func TestDraftLifecycle(t *testing.T) {
	env := setupTestApp(t)
	env.credentials.On("Fetch", mock.Anything, "sql").Return(&models.Credentials{}, nil)

	resp := env.do(t, http.MethodPost, "/drafts", `{"connector_id":"sql"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	snapshot := decode[wizard.Snapshot](t, resp)
	require.NotEmpty(t, snapshot.ID)
	assert.Equal(t, wizard.StepConfigureFields, snapshot.Step)
	require.NotNil(t, snapshot.Connection)
	assert.Equal(t, "db.svg", snapshot.Connection.Icon)

	path := "/drafts/" + snapshot.ID

	resp = env.do(t, http.MethodPatch, path, `{"name":"Orders DB","tags":["db"],"configured_properties":{"port":"abc"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snapshot = decode[wizard.Snapshot](t, resp)
	assert.Equal(t, "Orders DB", snapshot.Connection.Name)
	assert.Equal(t, []string{"db"}, snapshot.Connection.Tags)

	resp = env.do(t, http.MethodPost, path+"/save", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, path, `{"configured_properties":{"url":"postgres://db","port":"5432"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, path+"/save", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	saved := decode[models.Connection](t, resp)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "Orders DB", saved.Name)
	assert.Equal(t, "5432", saved.ConfiguredProperties["port"])

	resp = env.do(t, http.MethodGet, "/connections/"+saved.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, wizard.StepSaved, decode[wizard.Snapshot](t, resp).Step)

	resp = env.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraft_Validation(t *testing.T) {
	env := setupTestApp(t)

	resp := env.do(t, http.MethodPost, "/drafts", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/drafts", `{"connector_id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/drafts/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/drafts/missing/save", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraft_AcquireCredentials(t *testing.T) {
	env := setupTestApp(t)
	env.credentials.On("Fetch", mock.Anything, "twitter").
		Return(&models.Credentials{ConnectorID: "twitter", Type: "oauth2"}, nil)

	acquired := make(chan struct{})
	env.credentials.On("Acquire", mock.Anything, "twitter").
		Return(&models.AcquisitionResponse{ConnectorID: "twitter", Type: "oauth2", State: "s1"}, nil).
		Once().
		Run(func(mock.Arguments) { close(acquired) })

	resp := env.do(t, http.MethodPost, "/drafts", `{"connector_id":"twitter"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	snapshot := decode[wizard.Snapshot](t, resp)

	resp = env.do(t, http.MethodPost, "/drafts/"+snapshot.ID+"/credentials", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("credential acquisition was not started")
	}
}
