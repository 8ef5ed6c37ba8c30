package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/operion-connections/pkg/cmd"
	"github.com/dukex/operion-connections/pkg/coordinator"
	"github.com/dukex/operion-connections/pkg/eventbus"
	"github.com/dukex/operion-connections/pkg/events"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/services"
	"github.com/dukex/operion-connections/pkg/wizard"
	cli "github.com/urfave/cli/v3"
)

func ServeCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the connections API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL of the credentials store",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP",
				Sources: cli.EnvVars("OTEL_TRACING_ENABLED"),
			},
			&cli.DurationFlag{
				Name:    "fetch-timeout",
				Usage:   "Timeout for connector and credential lookups (0 disables it)",
				Sources: cli.EnvVars("FETCH_TIMEOUT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.InfoContext(ctx, "Initializing connections API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			store, err := cmd.NewCredentialsStore(ctx, logger, command.String("redis-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize credentials store: %w", err)
			}

			var credentialsStore services.CredentialsStore
			if store != nil {
				credentialsStore = store

				defer func() {
					if err := store.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close credentials store", "error", err)
					}
				}()
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			err = watchActivity(ctx, eventBus, logger)
			if err != nil {
				return fmt.Errorf("failed to subscribe to connection events: %w", err)
			}

			connections := services.NewConnection(persistence)
			connectors := services.NewConnector(persistence, credentialsStore)

			drafts := wizard.NewManager(ctx, connections, connectors, logger,
				coordinator.WithPublisher(eventBus),
				coordinator.WithTracer(cmd.NewTracer(ctx, logger, command.Bool("tracing"))),
				coordinator.WithFetchTimeout(command.Duration("fetch-timeout")),
			)

			defer func() {
				if err := drafts.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close drafts", "error", err)
				}
			}()

			api := NewAPI(logger, connections, connectors, drafts)

			return api.Start(ctx, command.Int("port"))
		},
	}
}

// watchActivity logs every ready and saved connection mirrored to the bus.
func watchActivity(ctx context.Context, bus eventbus.EventSubscriber, logger *slog.Logger) error {
	activity := logger.With("module", "activity")

	handler := func(ctx context.Context, key string, event events.Event) error {
		switch e := event.(type) {
		case *events.SetConnection:
			activity.InfoContext(ctx, "Connection ready", "connection_id", key, "connector_id", connectorID(e.Connection))
		case *events.SaveConnection:
			activity.InfoContext(ctx, "Connection saved", "connection_id", key, "connector_id", connectorID(e.Connection))
		}

		return nil
	}

	for _, eventType := range []events.EventType{events.SetConnectionEvent, events.SaveConnectionEvent} {
		err := bus.Handle(eventType, handler)
		if err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}

func connectorID(connection *models.Connection) string {
	if connection == nil {
		return ""
	}

	return connection.ConnectorID
}
