// Package file provides file-based persistence for connections and connectors.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/operion-connections/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
// Every entity is stored as one JSON document under <root>/<collection>/<id>.json.
type Persistence struct {
	root           string
	connectionRepo *ConnectionRepository
	connectorRepo  *ConnectorRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:           cleanRoot,
		connectionRepo: NewConnectionRepository(cleanRoot),
		connectorRepo:  NewConnectorRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) ConnectionRepository() persistence.ConnectionRepository {
	return fp.connectionRepo
}

func (fp *Persistence) ConnectorRepository() persistence.ConnectorRepository {
	return fp.connectorRepo
}
