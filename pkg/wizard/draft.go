package wizard

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dukex/operion-connections/pkg/coordinator"
	"github.com/dukex/operion-connections/pkg/events"
	"github.com/dukex/operion-connections/pkg/metrics"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/validation"
)

type Step string

const (
	StepSelectConnector Step = "select-connector"
	StepConfigureFields Step = "configure-fields"
	StepSaved           Step = "saved"
)

// Snapshot is the externally visible state of a draft.
type Snapshot struct {
	ID                   string              `json:"id"`
	Step                 Step                `json:"step"`
	Connection           *models.Connection  `json:"connection,omitempty"`
	ConfiguredProperties map[string]string   `json:"configured_properties,omitempty"`
	HasCredentials       bool                `json:"has_credentials"`
	Credentials          *models.Credentials `json:"credentials,omitempty"`
	Saved                *models.Connection  `json:"saved,omitempty"`
}

// Update holds the basic fields to change; nil fields are left alone.
type Update struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Draft is one connection being created, backed by its own coordinator.
type Draft struct {
	id          string
	coordinator *coordinator.Coordinator
	unsubscribe func()
	ready       chan struct{}
	readyOnce   sync.Once

	// ops serializes caller operations so each one can wait for its own events.
	ops sync.Mutex

	mu         sync.RWMutex
	step       Step
	properties map[string]string
	saved      *models.Connection
}

func newDraft(id string, c *coordinator.Coordinator) *Draft {
	d := &Draft{
		id:          id,
		coordinator: c,
		ready:       make(chan struct{}),
		step:        StepSelectConnector,
		properties:  map[string]string{},
	}

	d.unsubscribe = c.Subscribe(d.observe)

	return d
}

func (d *Draft) ID() string {
	return d.id
}

func (d *Draft) observe(_ context.Context, event events.Event) {
	metrics.CoordinatorEventsTotal.WithLabelValues(string(event.GetType())).Inc()

	if event.GetType() != events.SetConnectionEvent {
		return
	}

	d.mu.Lock()
	if d.step == StepSelectConnector {
		d.step = StepConfigureFields
	}
	d.mu.Unlock()

	d.readyOnce.Do(func() { close(d.ready) })
}

// WaitReady blocks until the connector and credentials checks have settled or ctx is done.
func (d *Draft) WaitReady(ctx context.Context) error {
	select {
	case <-d.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Draft) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &Snapshot{
		ID:                   d.id,
		Step:                 d.step,
		Connection:           d.coordinator.Connection(),
		ConfiguredProperties: maps.Clone(d.properties),
		HasCredentials:       d.coordinator.HasCredentials(),
		Credentials:          d.coordinator.Credentials(),
		Saved:                d.saved.Clone(),
	}
}

// Update applies the basic field edits and returns once the coordinator has processed them.
func (d *Draft) Update(ctx context.Context, update Update) error {
	d.ops.Lock()
	defer d.ops.Unlock()

	var pending []events.Event

	if update.Name != nil {
		pending = append(pending, events.SetName{Name: *update.Name})
	}

	if update.Description != nil {
		pending = append(pending, events.SetDescription{Description: *update.Description})
	}

	if update.Tags != nil {
		pending = append(pending, events.SetTags{Tags: slices.Clone(*update.Tags)})
	}

	if len(pending) == 0 {
		return nil
	}

	last := pending[len(pending)-1].GetType()
	processed := make(chan struct{})

	var once sync.Once

	unsubscribe := d.coordinator.Subscribe(func(_ context.Context, event events.Event) {
		if event.GetType() == last {
			once.Do(func() { close(processed) })
		}
	})
	defer unsubscribe()

	for _, event := range pending {
		err := d.coordinator.Emit(ctx, event)
		if err != nil {
			return err
		}
	}

	select {
	case <-processed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetProperties replaces the configured property values kept for the save.
func (d *Draft) SetProperties(properties map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.properties = maps.Clone(properties)
	if d.properties == nil {
		d.properties = map[string]string{}
	}
}

func (d *Draft) AcquireCredentials(ctx context.Context) error {
	return d.coordinator.AcquireCredentials(ctx)
}

// Save validates the configured properties against the connector and persists the connection.
func (d *Draft) Save(ctx context.Context) (*models.Connection, error) {
	d.ops.Lock()
	defer d.ops.Unlock()

	d.mu.RLock()
	step := d.step
	properties := maps.Clone(d.properties)
	d.mu.RUnlock()

	if step == StepSelectConnector {
		return nil, ErrDraftNotReady
	}

	connection := d.coordinator.Connection()
	if connection == nil || connection.Connector == nil {
		return nil, ErrConnectorNotLoaded
	}

	err := validation.Properties(connection.Connector, connection.ConnectorID, properties)
	if err != nil {
		metrics.DraftSavesTotal.WithLabelValues(metrics.StatusInvalid).Inc()

		return nil, err
	}

	connection.ConfiguredProperties = properties

	saved, err := d.coordinator.Save(ctx, connection)
	if err != nil {
		metrics.DraftSavesTotal.WithLabelValues(metrics.StatusFailed).Inc()

		return nil, err
	}

	metrics.DraftSavesTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	d.mu.Lock()
	d.step = StepSaved
	d.saved = saved.Clone()
	d.mu.Unlock()

	return saved, nil
}

func (d *Draft) close() error {
	d.unsubscribe()

	return d.coordinator.Close()
}
