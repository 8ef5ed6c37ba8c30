package main

import (
	"context"
	"os"

	"github.com/dukex/operion-connections/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9092

func main() {
	logger := log.WithModule("connections")

	cmd := &cli.Command{
		Name:                  "operion-connections",
		Usage:                 "Create, browse and manage connections to external systems",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file path or postgres URL)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			ServeCommand(logger),
			ListCommand(logger),
			ImportConnectorsCommand(logger),
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
