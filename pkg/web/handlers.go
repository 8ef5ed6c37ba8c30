package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/operion-connections/pkg/listquery"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/services"
	"github.com/dukex/operion-connections/pkg/wizard"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// DefaultDraftReadyTimeout bounds how long draft creation waits for the connector to load.
const DefaultDraftReadyTimeout = 5 * time.Second

type APIHandlers struct {
	connectionService *services.Connection
	connectorService  *services.Connector
	drafts            *wizard.Manager
	validator         *validator.Validate
	logger            *slog.Logger
	readyTimeout      time.Duration
}

func NewAPIHandlers(
	connectionService *services.Connection,
	connectorService *services.Connector,
	drafts *wizard.Manager,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		connectionService: connectionService,
		connectorService:  connectorService,
		drafts:            drafts,
		validator:         validator,
		logger:            logger.With("module", "web"),
		readyTimeout:      DefaultDraftReadyTimeout,
	}
}

// RegisterRoutes mounts every handler on the router.
func (h *APIHandlers) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HealthCheck)

	connections := router.Group("/connections")
	connections.Get("/", h.ListConnections)
	connections.Get("/:id", h.GetConnection)
	connections.Delete("/:id", h.DeleteConnection)

	connectors := router.Group("/connectors")
	connectors.Get("/", h.ListConnectors)
	connectors.Get("/:id", h.GetConnector)
	connectors.Get("/:id/credentials", h.GetConnectorCredentials)
	connectors.Put("/:id/credentials", h.RegisterConnectorCredentials)

	router.Get("/credentials/callback", h.CredentialsCallback)

	drafts := router.Group("/drafts")
	drafts.Post("/", h.CreateDraft)
	drafts.Get("/:id", h.GetDraft)
	drafts.Patch("/:id", h.UpdateDraft)
	drafts.Post("/:id/credentials", h.AcquireDraftCredentials)
	drafts.Post("/:id/save", h.SaveDraft)
	drafts.Delete("/:id", h.DeleteDraft)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, ok := h.connectionService.HealthCheck(c.Context())

	status := "healthy"
	code := fiber.StatusOK

	if !ok {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"drafts":    h.drafts.Len(),
		"timestamp": time.Now().UTC(),
	})
}

// ListConnections returns the connections filtered and sorted by the query string.
func (h *APIHandlers) ListConnections(c fiber.Ctx) error {
	sortFields := sortFieldsWith(connectionSortFields)

	query, err := parseListQuery(c, sortFields)
	if err != nil {
		return handleServiceError(c, err)
	}

	connections, err := h.connectionService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	response := runListQuery("connections", connections, query,
		listquery.WithLogger(h.logger),
		listquery.WithFilterFields(connectionFilterFields...),
		listquery.WithSortFields(connectionSortFields...),
	)

	return c.JSON(response)
}

func (h *APIHandlers) GetConnection(c fiber.Ctx) error {
	connection, err := h.connectionService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(connection)
}

func (h *APIHandlers) DeleteConnection(c fiber.Ctx) error {
	err := h.connectionService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListConnectors returns the connector catalog filtered and sorted by the query string.
func (h *APIHandlers) ListConnectors(c fiber.Ctx) error {
	query, err := parseListQuery(c, sortFieldsWith(nil))
	if err != nil {
		return handleServiceError(c, err)
	}

	connectors, err := h.connectorService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	response := runListQuery("connectors", connectors, query,
		listquery.WithLogger(h.logger),
		listquery.WithFilterFields(connectorFilterFields...),
	)

	return c.JSON(response)
}

func (h *APIHandlers) GetConnector(c fiber.Ctx) error {
	connector, err := h.connectorService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(connector)
}

func (h *APIHandlers) GetConnectorCredentials(c fiber.Ctx) error {
	credentials, err := h.connectorService.Credentials(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(credentials)
}

func (h *APIHandlers) RegisterConnectorCredentials(c fiber.Ctx) error {
	var req RegisterCredentialsRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	creds := &models.Credentials{
		ConnectorID:      c.Params("id"),
		Type:             req.Type,
		Label:            req.Label,
		Icon:             req.Icon,
		Description:      req.Description,
		AuthorizationURL: req.AuthorizationURL,
		Configured:       req.Configured,
	}

	err = h.connectorService.RegisterCredentials(c.Context(), creds)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(creds)
}

// CredentialsCallback redeems the state a provider redirects back with.
func (h *APIHandlers) CredentialsCallback(c fiber.Ctx) error {
	state := c.Query("state")
	if state == "" {
		return badRequest(c, "state is required")
	}

	connector, err := h.connectorService.ResolveState(c.Context(), state)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.logger.InfoContext(c.Context(), "Credentials callback received", "connector_id", connector.ID)

	return c.JSON(CredentialsCallbackResponse{
		ConnectorID: connector.ID,
		State:       state,
		Connector:   connector,
	})
}

// CreateDraft opens a draft and waits briefly for its connector so the first snapshot is useful.
func (h *APIHandlers) CreateDraft(c fiber.Ctx) error {
	var req CreateDraftRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	draft, err := h.drafts.Create(req.ConnectorID)
	if err != nil {
		return handleServiceError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.readyTimeout)
	defer cancel()

	err = draft.WaitReady(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "Draft not ready before responding", "draft_id", draft.ID(), "error", err)
	}

	return c.Status(fiber.StatusCreated).JSON(draft.Snapshot())
}

func (h *APIHandlers) GetDraft(c fiber.Ctx) error {
	draft, err := h.drafts.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(draft.Snapshot())
}

// UpdateDraft applies a partial update of the basic fields and the configured properties.
func (h *APIHandlers) UpdateDraft(c fiber.Ctx) error {
	draft, err := h.drafts.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	var req UpdateDraftRequest

	err = c.Bind().JSON(&req)
	if err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	err = draft.Update(c.Context(), wizard.Update{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	if req.ConfiguredProperties != nil {
		draft.SetProperties(req.ConfiguredProperties)
	}

	return c.JSON(draft.Snapshot())
}

func (h *APIHandlers) AcquireDraftCredentials(c fiber.Ctx) error {
	draft, err := h.drafts.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	err = draft.AcquireCredentials(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(AcceptedResponse{Status: "accepted"})
}

func (h *APIHandlers) SaveDraft(c fiber.Ctx) error {
	draft, err := h.drafts.Get(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	saved, err := draft.Save(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (h *APIHandlers) DeleteDraft(c fiber.Ctx) error {
	err := h.drafts.Delete(c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
