package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/dukex/operion-connections/pkg/cmd"
	"github.com/dukex/operion-connections/pkg/listquery"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var errInvalidFilterFlag = errors.New("filter must be <field>:<value>")

func ListCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List connections, optionally watching for changes",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter as <field>:<value>, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "tag",
				Usage: "Keep connections carrying the tag, repeatable",
			},
			&cli.StringFlag{
				Name:  "sort-by",
				Usage: "Field to sort by",
				Value: "name",
			},
			&cli.BoolFlag{
				Name:  "desc",
				Usage: "Sort in descending order",
			},
			&cli.StringFlag{
				Name:  "watch",
				Usage: "Poll schedule, e.g. \"@every 10s\"; lists once when empty",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			filters, err := listFilters(command.StringSlice("filter"), command.StringSlice("tag"))
			if err != nil {
				return err
			}

			connections := services.NewConnection(persistence)
			out := command.Root().Writer
			loaded := false

			// The toolbar setup below also emits; print only projections of loaded lists.
			pipeline := listquery.New(func(items []*models.Connection) {
				if loaded {
					printConnections(out, items)
				}
			}, listquery.WithLogger(logger))

			for _, applied := range filters {
				pipeline.ApplyFilter(applied)
			}

			pipeline.Sort(&listquery.SortEvent{
				Field:       listquery.SortField{ID: command.String("sort-by")},
				IsAscending: !command.Bool("desc"),
			})

			schedule := command.String("watch")
			if schedule == "" {
				items, err := connections.List(ctx)
				if err != nil {
					return err
				}

				loaded = true
				pipeline.Update(items)

				return nil
			}

			source := listquery.NewPollingSource(schedule, connections.List, logger)

			updates, err := source.Start(ctx)
			if err != nil {
				return err
			}

			loaded = true

			err = pipeline.Run(ctx, updates)
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		},
	}
}

func listFilters(filters, tags []string) ([]listquery.AppliedFilter, error) {
	applied := make([]listquery.AppliedFilter, 0, len(filters)+len(tags))

	for _, raw := range filters {
		field, value, ok := strings.Cut(raw, ":")
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidFilterFlag, raw)
		}

		applied = append(applied, listquery.AppliedFilter{Field: listquery.FilterField{ID: field}, Value: value})
	}

	for _, tag := range tags {
		applied = append(applied, listquery.AppliedFilter{
			Field: listquery.FilterField{ID: listquery.TagFieldID},
			Query: &listquery.FilterQuery{ID: tag, Value: tag},
		})
	}

	return applied, nil
}

func printConnections(out io.Writer, connections []*models.Connection) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tNAME\tCONNECTOR\tTAGS")
	for _, connection := range connections {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			connection.ID, connection.Name, connection.ConnectorID, strings.Join(connection.Tags, ","))
	}

	_ = w.Flush()
}
