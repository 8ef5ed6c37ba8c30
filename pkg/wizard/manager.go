// Package wizard drives connection creation drafts: pick a connector, configure the fields,
// then save.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukex/operion-connections/pkg/coordinator"
	"github.com/dukex/operion-connections/pkg/metrics"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrDraftNotFound      = errors.New("draft not found")
	ErrConnectorRequired  = errors.New("connector id is required")
	ErrDraftNotReady      = errors.New("draft connector is still loading")
	ErrConnectorNotLoaded = errors.New("draft connector could not be loaded")
)

// Manager keeps the open drafts by id.
type Manager struct {
	connections coordinator.ConnectionStore
	connectors  coordinator.ConnectorStore
	base        *slog.Logger
	logger      *slog.Logger
	options     []coordinator.Option

	ctx    context.Context //nolint:containedctx // lifetime of every draft coordinator
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewManager(ctx context.Context, connections coordinator.ConnectionStore, connectors coordinator.ConnectorStore, logger *slog.Logger, opts ...coordinator.Option) *Manager {
	return &Manager{
		connections: connections,
		connectors:  connectors,
		base:        logger,
		logger:      logger.With("module", "wizard"),
		options:     opts,
		ctx:         ctx,
		drafts:      make(map[string]*Draft),
	}
}

// Create opens a draft for a new connection of the given connector.
func (m *Manager) Create(connectorID string) (*Draft, error) {
	if connectorID == "" {
		return nil, ErrConnectorRequired
	}

	id := uuid.New().String()

	c := coordinator.New(m.connections, m.connectors, m.base.With("draft_id", id), m.options...)
	c.Start(m.ctx)

	draft := newDraft(id, c)

	if !c.SetConnection(&models.Connection{ConnectorID: connectorID}) {
		_ = draft.close()

		return nil, coordinator.ErrClosed
	}

	m.mu.Lock()
	m.drafts[draft.id] = draft
	m.mu.Unlock()

	metrics.DraftsOpen.Inc()

	m.logger.Info("Draft created", "draft_id", draft.id, "connector_id", connectorID)

	return draft, nil
}

func (m *Manager) Get(id string) (*Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	draft, ok := m.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}

	return draft, nil
}

// Delete closes the draft coordinator and forgets the draft.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	draft, ok := m.drafts[id]
	delete(m.drafts, id)
	m.mu.Unlock()

	if !ok {
		return ErrDraftNotFound
	}

	metrics.DraftsOpen.Dec()
	m.logger.Info("Draft deleted", "draft_id", id)

	return draft.close()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.drafts)
}

// Close closes every open draft.
func (m *Manager) Close() error {
	m.mu.Lock()
	drafts := m.drafts
	m.drafts = make(map[string]*Draft)
	m.mu.Unlock()

	metrics.DraftsOpen.Sub(float64(len(drafts)))

	var errs []error
	for _, draft := range drafts {
		errs = append(errs, draft.close())
	}

	return errors.Join(errs...)
}
