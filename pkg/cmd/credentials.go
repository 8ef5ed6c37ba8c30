package cmd

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-connections/pkg/credentials"
)

// NewCredentialsStore connects to Redis. Without a URL no store is configured and credential
// lookups report the store as unavailable.
func NewCredentialsStore(ctx context.Context, logger *slog.Logger, redisURL string) (*credentials.Store, error) {
	if redisURL == "" {
		logger.WarnContext(ctx, "No Redis URL configured, credentials are unavailable")

		return nil, nil //nolint:nilnil // absent store is a valid configuration
	}

	return credentials.NewStore(ctx, logger, redisURL)
}
