package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
)

// ConnectorRepository handles the connector catalog stored in PostgreSQL.
type ConnectorRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConnectorRepository creates a new connector repository.
func NewConnectorRepository(db *sql.DB, logger *slog.Logger) *ConnectorRepository {
	return &ConnectorRepository{db: db, logger: logger}
}

func (cr *ConnectorRepository) GetAll(ctx context.Context) ([]*models.Connector, error) {
	rows, err := cr.db.QueryContext(ctx, `SELECT id, name, description, icon, properties FROM connectors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query connectors: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			cr.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	connectors := make([]*models.Connector, 0)

	for rows.Next() {
		connector, err := scanConnector(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connector: %w", err)
		}

		connectors = append(connectors, connector)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connectors: %w", err)
	}

	return connectors, nil
}

func (cr *ConnectorRepository) GetByID(ctx context.Context, id string) (*models.Connector, error) {
	row := cr.db.QueryRowContext(ctx, `SELECT id, name, description, icon, properties FROM connectors WHERE id = $1`, id)

	connector, err := scanConnector(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewConnectorError("GetByID", id, persistence.ErrConnectorNotFound)
		}

		return nil, persistence.NewConnectorError("GetByID", id, err)
	}

	return connector, nil
}

// Save upserts the connector with its property values stripped.
func (cr *ConnectorRepository) Save(ctx context.Context, connector *models.Connector) error {
	if connector.ID == "" {
		return persistence.NewConnectorError("Save", "", persistence.ErrInvalidID)
	}

	stored := connector.Clone()
	stored.StripPropertyValues()

	properties, err := marshalNullable(stored.Properties, false)
	if err != nil {
		return persistence.NewConnectorError("Save", connector.ID, err)
	}

	query := `
		INSERT INTO connectors (id, name, description, icon, properties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			properties = EXCLUDED.properties,
			updated_at = EXCLUDED.updated_at
	`

	_, err = cr.db.ExecContext(ctx, query, stored.ID, stored.Name, stored.Description, stored.Icon, properties)
	if err != nil {
		return persistence.NewConnectorError("Save", connector.ID, fmt.Errorf("failed to save connector: %w", err))
	}

	return nil
}

func scanConnector(row scanner) (*models.Connector, error) {
	var (
		connector  models.Connector
		properties []byte
	)

	err := row.Scan(&connector.ID, &connector.Name, &connector.Description, &connector.Icon, &properties)
	if err != nil {
		return nil, err
	}

	if err := unmarshalNullable(properties, &connector.Properties); err != nil {
		return nil, err
	}

	return &connector, nil
}
