package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dukex/operion-connections/pkg/cmd"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence/file"
	"github.com/dukex/operion-connections/pkg/services"
	"github.com/dukex/operion-connections/pkg/web"
	"github.com/dukex/operion-connections/pkg/wizard"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	persistence := file.NewPersistence(t.TempDir())
	connections := services.NewConnection(persistence)
	connectors := services.NewConnector(persistence, nil)

	drafts := wizard.NewManager(t.Context(), connections, connectors, logger)
	t.Cleanup(func() { _ = drafts.Close() })

	return NewAPI(logger, connections, connectors, drafts).App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Operion Connections API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	for _, path := range []string{"/livez", "/readyz", "/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAPI_ConnectionsList(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/connections", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["results_count"])
	assert.Contains(t, body, "toolbar")
}

func TestReadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"sql","name":"Database"},
		{"id":"twitter","name":"Twitter","credentials":{"type":"oauth2","authorization_url":"https://auth.example.com/authorize"}}
	]`), 0o600))

	entries, err := readCatalog(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "sql", entries[0].ID)
	assert.Nil(t, entries[0].Credentials)
	require.NotNil(t, entries[1].Credentials)
	assert.Equal(t, "oauth2", entries[1].Credentials.Type)

	yamlPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- id: sql
  name: Database
  properties:
    url:
      display_name: URL
      type: string
      required: true
  credentials:
    type: basic
    label: Database user
`), 0o600))

	entries, err = readCatalog(yamlPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sql", entries[0].ID)
	assert.Equal(t, "URL", entries[0].Properties["url"].DisplayName)
	assert.True(t, entries[0].Properties["url"].Required)
	require.NotNil(t, entries[0].Credentials)
	assert.Equal(t, "Database user", entries[0].Credentials.Label)

	_, err = readCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestImportCatalog_WithoutCredentialsStore(t *testing.T) {
	service := services.NewConnector(file.NewPersistence(t.TempDir()), nil)

	count, registered, err := importCatalog(t.Context(), slog.New(slog.DiscardHandler), service, []*catalogEntry{
		{Connector: models.Connector{ID: "twitter", Name: "Twitter"}, Credentials: &models.Credentials{Type: "oauth2"}},
		{Connector: models.Connector{ID: "sql", Name: "Database"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Zero(t, registered)

	connector, err := service.Load(t.Context(), "twitter")
	require.NoError(t, err)
	assert.Equal(t, "Twitter", connector.Name)
}

func TestImportCatalog_RegistersCredentialsAndRedeemsState(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(context.Background()))
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	store, err := cmd.NewCredentialsStore(ctx, logger, "redis://"+endpoint+"/0")
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	persistence := file.NewPersistence(t.TempDir())
	connectors := services.NewConnector(persistence, store)

	count, registered, err := importCatalog(ctx, logger, connectors, []*catalogEntry{
		{
			Connector:   models.Connector{ID: "twitter", Name: "Twitter"},
			Credentials: &models.Credentials{Type: "oauth2", AuthorizationURL: "https://auth.example.com/authorize"},
		},
		{Connector: models.Connector{ID: "sql", Name: "Database"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, registered)

	creds, err := connectors.Credentials(ctx, "twitter")
	require.NoError(t, err)
	assert.True(t, creds.Present())

	resp, err := connectors.AcquireCredentials(ctx, "twitter")
	require.NoError(t, err)

	connections := services.NewConnection(persistence)
	drafts := wizard.NewManager(ctx, connections, connectors, logger)
	t.Cleanup(func() { _ = drafts.Close() })

	app := NewAPI(logger, connections, connectors, drafts).App()

	callback, err := app.Test(httptest.NewRequest(http.MethodGet, "/credentials/callback?state="+resp.State, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, callback.StatusCode)

	var body web.CredentialsCallbackResponse
	require.NoError(t, json.NewDecoder(callback.Body).Decode(&body))
	assert.Equal(t, "twitter", body.ConnectorID)

	replay, err := app.Test(httptest.NewRequest(http.MethodGet, "/credentials/callback?state="+resp.State, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, replay.StatusCode)
}

func TestListFilters(t *testing.T) {
	filters, err := listFilters([]string{"name:orders"}, []string{"db"})
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "name", filters[0].Field.ID)
	assert.Equal(t, "orders", filters[0].Value)
	assert.Equal(t, "tag", filters[1].Field.ID)
	assert.Equal(t, "db", filters[1].Query.Value)

	_, err = listFilters([]string{"orders"}, nil)
	assert.ErrorIs(t, err, errInvalidFilterFlag)
}

func TestPrintConnections(t *testing.T) {
	var out strings.Builder
	printConnections(&out, []*models.Connection{{ID: "c1", Name: "Orders", ConnectorID: "sql", Tags: []string{"db", "prod"}}})

	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "db,prod")
}
