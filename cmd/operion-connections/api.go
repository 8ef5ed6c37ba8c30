// Package main provides the connections API server and its command-line tooling.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/operion-connections/pkg/services"
	"github.com/dukex/operion-connections/pkg/web"
	"github.com/dukex/operion-connections/pkg/wizard"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	logger      *slog.Logger
	connections *services.Connection
	connectors  *services.Connector
	drafts      *wizard.Manager
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	connections *services.Connection,
	connectors *services.Connector,
	drafts *wizard.Manager,
) *API {
	return &API{
		logger:      logger,
		connections: connections,
		connectors:  connectors,
		drafts:      drafts,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.connections, a.connectors, a.drafts, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Connections API")
	})

	handlers.RegisterRoutes(app)

	return app
}

// Start serves the API until ctx is done, then shuts the server down.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()
	errs := make(chan error, 1)

	go func() {
		errs <- app.Listen(":" + strconv.Itoa(port))
	}()

	a.logger.InfoContext(ctx, "Starting connections API", "port", port)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		a.logger.Info("Shutting down connections API")

		return app.Shutdown()
	}
}
