// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/operion-connections/pkg/persistence"
	"github.com/dukex/operion-connections/pkg/persistence/file"
	"github.com/dukex/operion-connections/pkg/persistence/postgresql"
)

var postgresSchemes = []string{"postgres://", "postgresql://"}

// NewPersistence selects the backend from the URL scheme. Anything that is not a PostgreSQL
// URL is a file persistence root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	for _, scheme := range postgresSchemes {
		if strings.HasPrefix(databaseURL, scheme) {
			return postgresql.NewPersistence(ctx, logger, databaseURL)
		}
	}

	logger.InfoContext(ctx, "Using file persistence", "root", strings.TrimPrefix(databaseURL, "file://"))

	return file.NewPersistence(databaseURL), nil
}
