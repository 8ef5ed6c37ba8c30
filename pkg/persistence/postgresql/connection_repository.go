package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/persistence"
)

const connectionColumns = `id, name, description, tags, connector_id, connector, icon, configured_properties, created_at, updated_at`

// ConnectionRepository handles connection-related database operations.
type ConnectionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(db *sql.DB, logger *slog.Logger) *ConnectionRepository {
	return &ConnectionRepository{db: db, logger: logger}
}

// GetAll returns every connection ordered by id.
func (cr *ConnectionRepository) GetAll(ctx context.Context) ([]*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections ORDER BY id`

	rows, err := cr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			cr.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	connections := make([]*models.Connection, 0)

	for rows.Next() {
		connection, err := cr.scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}

		connections = append(connections, connection)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return connections, nil
}

// GetByID retrieves a connection by its ID.
func (cr *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`

	connection, err := cr.scanConnection(cr.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewConnectionError("GetByID", id, persistence.ErrConnectionNotFound)
		}

		return nil, persistence.NewConnectionError("GetByID", id, err)
	}

	return connection, nil
}

// Save saves a connection to the database (insert or update).
func (cr *ConnectionRepository) Save(ctx context.Context, connection *models.Connection) error {
	if connection.ID == "" {
		return persistence.NewConnectionError("Save", "", persistence.ErrInvalidID)
	}

	now := time.Now().UTC()
	if connection.CreatedAt.IsZero() {
		connection.CreatedAt = now
	}

	connection.UpdatedAt = now

	tags, err := marshalNullable(connection.Tags, connection.Tags == nil)
	if err != nil {
		return persistence.NewConnectionError("Save", connection.ID, err)
	}

	connector, err := marshalNullable(connection.Connector, connection.Connector == nil)
	if err != nil {
		return persistence.NewConnectionError("Save", connection.ID, err)
	}

	properties, err := marshalNullable(connection.ConfiguredProperties, connection.ConfiguredProperties == nil)
	if err != nil {
		return persistence.NewConnectionError("Save", connection.ID, err)
	}

	query := `
		INSERT INTO connections (` + connectionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			connector_id = EXCLUDED.connector_id,
			connector = EXCLUDED.connector,
			icon = EXCLUDED.icon,
			configured_properties = EXCLUDED.configured_properties,
			updated_at = EXCLUDED.updated_at
	`

	_, err = cr.db.ExecContext(ctx, query,
		connection.ID,
		connection.Name,
		connection.Description,
		tags,
		connection.ConnectorID,
		connector,
		connection.Icon,
		properties,
		connection.CreatedAt,
		connection.UpdatedAt,
	)
	if err != nil {
		return persistence.NewConnectionError("Save", connection.ID, fmt.Errorf("failed to save connection: %w", err))
	}

	return nil
}

// Delete removes a connection from the database.
func (cr *ConnectionRepository) Delete(ctx context.Context, id string) error {
	result, err := cr.db.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return persistence.NewConnectionError("Delete", id, fmt.Errorf("failed to delete connection: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewConnectionError("Delete", id, fmt.Errorf("failed to get rows affected: %w", err))
	}

	if rowsAffected == 0 {
		return persistence.NewConnectionError("Delete", id, persistence.ErrConnectionNotFound)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (cr *ConnectionRepository) scanConnection(row scanner) (*models.Connection, error) {
	var (
		connection                  models.Connection
		tags, connector, properties []byte
	)

	err := row.Scan(
		&connection.ID,
		&connection.Name,
		&connection.Description,
		&tags,
		&connection.ConnectorID,
		&connector,
		&connection.Icon,
		&properties,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalNullable(tags, &connection.Tags); err != nil {
		return nil, err
	}

	if err := unmarshalNullable(connector, &connection.Connector); err != nil {
		return nil, err
	}

	if err := unmarshalNullable(properties, &connection.ConfiguredProperties); err != nil {
		return nil, err
	}

	return &connection, nil
}
