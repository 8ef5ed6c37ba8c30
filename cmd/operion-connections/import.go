package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/operion-connections/pkg/cmd"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/services"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// catalogEntry is one connector of a catalog file, optionally with its credential provider.
type catalogEntry struct {
	models.Connector `yaml:",inline"`

	Credentials *models.Credentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

func ImportConnectorsCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "import-connectors",
		Usage: "Import a connector catalog from a JSON or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "JSON or YAML file holding a list of connectors",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL of the credentials store; credentials blocks are skipped without it",
				Sources: cli.EnvVars("REDIS_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			entries, err := readCatalog(command.String("file"))
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
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

			count, registered, err := importCatalog(ctx, logger, services.NewConnector(persistence, credentialsStore), entries)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Connectors imported", "count", count, "credentials", registered)

			return nil
		},
	}
}

// importCatalog saves the connectors, then registers the credentials blocks. Without a
// credentials store the blocks are skipped with a warning.
func importCatalog(ctx context.Context, logger *slog.Logger, service *services.Connector, entries []*catalogEntry) (int, int, error) {
	connectors := make([]*models.Connector, 0, len(entries))
	for _, entry := range entries {
		connectors = append(connectors, &entry.Connector)
	}

	count, err := service.Import(ctx, connectors)
	if err != nil {
		return count, 0, err
	}

	registered := 0

	for _, entry := range entries {
		if entry.Credentials == nil {
			continue
		}

		creds := *entry.Credentials
		if creds.ConnectorID == "" {
			creds.ConnectorID = entry.ID
		}

		err := service.RegisterCredentials(ctx, &creds)
		if services.IsUnavailableError(err) {
			logger.WarnContext(ctx, "No credentials store configured, skipping credentials", "connector_id", entry.ID)

			continue
		}

		if err != nil {
			return count, registered, fmt.Errorf("failed to register credentials for %s: %w", entry.ID, err)
		}

		registered++
	}

	return count, registered, nil
}

func readCatalog(path string) ([]*catalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var entries []*catalogEntry

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, entry := range entries {
		if entry == nil {
			return nil, fmt.Errorf("failed to parse catalog: entry %d is empty", i)
		}
	}

	return entries, nil
}
