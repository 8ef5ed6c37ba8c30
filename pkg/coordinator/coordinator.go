// Package coordinator sequences the loading of a connection being edited: its connector, its
// credentials and finally the save, as a closed set of events processed by one dispatch loop.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/operion-connections/pkg/eventbus"
	"github.com/dukex/operion-connections/pkg/events"
	"github.com/dukex/operion-connections/pkg/log"
	"github.com/dukex/operion-connections/pkg/models"
	"github.com/dukex/operion-connections/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const mailboxSize = 64

// ConnectionStore persists connections.
type ConnectionStore interface {
	UpdateOrCreate(ctx context.Context, connection *models.Connection) (*models.Connection, error)
}

// ConnectorStore loads connectors and their credentials.
type ConnectorStore interface {
	Load(ctx context.Context, connectorID string) (*models.Connector, error)
	Credentials(ctx context.Context, connectorID string) (*models.Credentials, error)
	AcquireCredentials(ctx context.Context, connectorID string) (*models.AcquisitionResponse, error)
}

// Listener observes every processed event on the dispatch loop. It must not block or call
// back into the coordinator's Emit, SetConnection or AcquireCredentials.
type Listener func(ctx context.Context, event events.Event)

type Option func(*Coordinator)

// WithPublisher mirrors every processed event to the bus, keyed by connection id.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(c *Coordinator) {
		c.publisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = tracer
	}
}

// WithFetchTimeout bounds every store call. Zero means no timeout.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.fetchTimeout = timeout
	}
}

// Coordinator owns the connection currently being edited.
type Coordinator struct {
	connections ConnectionStore
	connectors  ConnectorStore
	logger      *slog.Logger

	publisher    eventbus.EventPublisher
	tracer       trace.Tracer
	fetchTimeout time.Duration

	mailbox chan any
	done    chan struct{}
	ctx     context.Context //nolint:containedctx // cancels in-flight store calls on Close
	cancel  context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup

	mu    sync.RWMutex
	state state

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

func New(connections ConnectionStore, connectors ConnectorStore, logger *slog.Logger, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		connections: connections,
		connectors:  connectors,
		logger:      logger.With("module", "CurrentConnectionService"),
		tracer:      otelhelper.NoopTracer(),
		mailbox:     make(chan any, mailboxSize),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		listeners:   make(map[int]Listener),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start runs the dispatch loop until ctx is done or Close is called. Calls after the first are
// ignored.
func (c *Coordinator) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.wg.Add(1)

		go c.run(ctx)
	})
}

// Close stops the dispatch loop and waits for in-flight store calls to return.
func (c *Coordinator) Close() error {
	c.stop()
	c.wg.Wait()

	return nil
}

func (c *Coordinator) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
}

// SetConnection makes connection the one being edited and starts loading its connector and
// credentials. It returns false, leaving the held connection untouched, when connection is nil,
// has no connector id or the coordinator is closed.
func (c *Coordinator) SetConnection(connection *models.Connection) bool {
	if connection == nil || connection.ConnectorID == "" {
		c.logger.Debug("Ignoring connection without connector id")

		return false
	}

	return c.post(context.Background(), assign{connection: connection.Clone()}) == nil
}

// Emit queues a field edit or a save.
func (c *Coordinator) Emit(ctx context.Context, event events.Event) error {
	switch event := normalize(event).(type) {
	case events.SaveConnection:
		event.Connection = event.Connection.Clone()

		return c.post(ctx, event)
	case events.SetName, events.SetDescription, events.SetTags:
		return c.post(ctx, event)
	default:
		return ErrUnsupportedEvent
	}
}

// AcquireCredentials asks the connector store to start credential acquisition for the held
// connector. The response is only logged.
func (c *Coordinator) AcquireCredentials(ctx context.Context) error {
	return c.post(ctx, acquireRequest{})
}

// Save persists connection, or the held one when nil, and waits for the outcome.
func (c *Coordinator) Save(ctx context.Context, connection *models.Connection) (*models.Connection, error) {
	type outcome struct {
		saved *models.Connection
		err   error
	}

	result := make(chan outcome, 1)

	err := c.post(ctx, events.SaveConnection{
		Connection: connection.Clone(),
		OnSuccess:  func(saved *models.Connection) { result <- outcome{saved: saved} },
		OnError:    func(err error) { result <- outcome{err: err} },
	})
	if err != nil {
		return nil, err
	}

	select {
	case res := <-result:
		return res.saved, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// Connection returns a copy of the held connection, nil when none is held.
func (c *Coordinator) Connection() *models.Connection {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.connection.Clone()
}

func (c *Coordinator) Credentials() *models.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state.credentials == nil {
		return nil
	}

	credentials := *c.state.credentials

	return &credentials
}

// HasCredentials reports whether typed credentials are cached for the held connector.
func (c *Coordinator) HasCredentials() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state.connection == nil {
		return false
	}

	return c.state.credentials.Present() && c.state.credentials.ValidFor(c.state.connection.ConnectorID)
}

// Subscribe registers listener and returns the function removing it.
func (c *Coordinator) Subscribe(listener Listener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = listener

	var once sync.Once

	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			defer c.listenersMu.Unlock()

			delete(c.listeners, id)
		})
	}
}

func (c *Coordinator) post(ctx context.Context, in any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.mailbox <- in:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer c.wg.Done()
	defer c.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case in := <-c.mailbox:
			c.dispatch(ctx, in)
		}
	}
}

// dispatch processes in and then every event it produces, first in first out, before the next
// mailbox input is read.
func (c *Coordinator) dispatch(ctx context.Context, in any) {
	queue := []any{in}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		c.mu.Lock()
		st, effects := transition(c.state, next)
		c.state = st
		generation := st.generation
		c.mu.Unlock()

		if event, ok := next.(events.Event); ok {
			c.notify(ctx, event)
		}

		for _, effect := range effects {
			switch effect := effect.(type) {
			case emit:
				queue = append(queue, effect.event)
			case note:
				c.logger.Log(ctx, effect.level, effect.msg, append(effect.args, "generation", generation)...)
			case loadConnector:
				c.goFetch(ctx, "coordinator.load_connector", effect.connectorID, effect.generation, func(ctx context.Context) any {
					connector, err := c.connectors.Load(ctx, effect.connectorID)

					return connectorResult{generation: effect.generation, connector: connector, err: err}
				})
			case fetchCredentials:
				c.goFetch(ctx, "coordinator.fetch_credentials", effect.connectorID, effect.generation, func(ctx context.Context) any {
					credentials, err := c.connectors.Credentials(ctx, effect.connectorID)

					return credentialsResult{
						generation:  effect.generation,
						connectorID: effect.connectorID,
						credentials: credentials,
						err:         err,
					}
				})
			case acquire:
				c.goAcquire(ctx, effect)
			case save:
				c.goSave(ctx, effect)
			}
		}
	}
}

func (c *Coordinator) notify(ctx context.Context, event events.Event) {
	event = redact(event)
	c.logger.DebugContext(ctx, "connection event", "event_type", event.GetType(), "event", log.JSON(event))

	c.listenersMu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for id := range c.nextListener {
		if listener, ok := c.listeners[id]; ok {
			listeners = append(listeners, listener)
		}
	}
	c.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(ctx, event)
	}

	if c.publisher == nil {
		return
	}

	key := ""
	if connection := c.Connection(); connection != nil {
		key = connection.ID
	}

	err := c.publisher.Publish(ctx, key, event)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to publish connection event", "event_type", event.GetType(), "error", err)
	}
}

// storeContext derives the context of one store call from the coordinator lifetime.
func (c *Coordinator) storeContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.ctx)
	ctx = trace.ContextWithSpan(ctx, trace.SpanFromContext(parent))

	if c.fetchTimeout <= 0 {
		return ctx, cancel
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, c.fetchTimeout)

	return timeoutCtx, func() {
		timeoutCancel()
		cancel()
	}
}

// goFetch runs fetch outside the loop and posts its result back to the mailbox.
func (c *Coordinator) goFetch(parent context.Context, spanName, connectorID string, generation uint64, fetch func(context.Context) any) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		ctx, cancel := c.storeContext(parent)
		defer cancel()

		ctx, span := otelhelper.StartSpan(ctx, c.tracer, spanName,
			attribute.String(otelhelper.ConnectorIDKey, connectorID),
			attribute.Int64(otelhelper.GenerationKey, int64(generation)), //nolint:gosec // generations stay small
		)
		defer span.End()

		result := fetch(ctx)
		if err := resultError(result); err != nil {
			otelhelper.SetError(span, err)
		}

		select {
		case c.mailbox <- result:
		case <-c.done:
		}
	}()
}

func (c *Coordinator) goAcquire(parent context.Context, effect acquire) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		ctx, cancel := c.storeContext(parent)
		defer cancel()

		resp, err := c.connectors.AcquireCredentials(ctx, effect.connectorID)
		if err != nil {
			c.logger.InfoContext(ctx, "Failed to acquire credentials", "connector_id", effect.connectorID, "error", err)

			return
		}

		c.logger.InfoContext(ctx, "Got response", "connector_id", effect.connectorID, "response", log.JSON(resp))
	}()
}

func (c *Coordinator) goSave(parent context.Context, effect save) {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if effect.err != nil {
			c.logger.DebugContext(parent, "Error saving connection", "error", effect.err)

			if effect.onError != nil {
				effect.onError(effect.err)
			}

			return
		}

		ctx, cancel := c.storeContext(parent)
		defer cancel()

		ctx, span := otelhelper.StartSpan(ctx, c.tracer, "coordinator.save_connection",
			attribute.String(otelhelper.ConnectionIDKey, effect.connection.ID),
			attribute.String(otelhelper.ConnectorIDKey, effect.connection.ConnectorID),
		)
		defer span.End()

		saved, err := c.connections.UpdateOrCreate(ctx, effect.connection)
		if err != nil {
			otelhelper.SetError(span, err)
			c.logger.DebugContext(ctx, "Error saving connection", "error", err)

			if effect.onError != nil {
				effect.onError(err)
			}

			return
		}

		c.logger.DebugContext(ctx, "Saved connection", "connection", log.JSON(saved.Redacted()))

		if effect.onSuccess != nil {
			effect.onSuccess(saved)
		}
	}()
}

func resultError(result any) error {
	switch result := result.(type) {
	case connectorResult:
		return result.err
	case credentialsResult:
		return result.err
	default:
		return nil
	}
}

// redact copies event with connector property values and secret configured values removed, so
// listeners, the bus and the log never see them.
func redact(event events.Event) events.Event {
	switch e := event.(type) {
	case events.SaveConnection:
		e.Connection = e.Connection.Redacted()

		return e
	case events.SetConnection:
		e.Connection = e.Connection.Redacted()

		return e
	case events.CheckConnector:
		e.Connection = e.Connection.Redacted()

		return e
	case events.CheckCredentials:
		e.Connection = e.Connection.Redacted()

		return e
	default:
		return event
	}
}

// normalize turns pointers to caller events into values so transitions only see one form.
func normalize(event events.Event) events.Event {
	switch e := event.(type) {
	case *events.SetName:
		if e != nil {
			return *e
		}
	case *events.SetDescription:
		if e != nil {
			return *e
		}
	case *events.SetTags:
		if e != nil {
			return *e
		}
	case *events.SaveConnection:
		if e != nil {
			return *e
		}
	default:
		return event
	}

	return nil
}
