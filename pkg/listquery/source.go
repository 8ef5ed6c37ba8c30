package listquery

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/robfig/cron/v3"
)

// FetchFunc loads the full list of items.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// PollingSource re-fetches a list on a cron schedule and emits it only when it changed.
type PollingSource[T any] struct {
	schedule string
	fetch    FetchFunc[T]
	logger   *slog.Logger

	mu   sync.Mutex
	last []T
	seen bool
}

func NewPollingSource[T any](schedule string, fetch FetchFunc[T], logger *slog.Logger) *PollingSource[T] {
	return &PollingSource[T]{
		schedule: schedule,
		fetch:    fetch,
		logger:   logger.With("module", "polling_source", "schedule", schedule),
	}
}

// Start emits the current list right away and then on every schedule tick that sees a change.
// The returned channel is closed once ctx is done and every running poll has returned.
func (s *PollingSource[T]) Start(ctx context.Context) (<-chan []T, error) {
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", s.schedule, err)
	}

	out := make(chan []T)

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := c.AddFunc(s.schedule, func() { s.poll(ctx, out) })
	if err != nil {
		return nil, fmt.Errorf("failed to schedule poll: %w", err)
	}

	go func() {
		defer close(out)

		s.poll(ctx, out)
		c.Start()

		<-ctx.Done()
		<-c.Stop().Done()

		s.logger.DebugContext(ctx, "polling source stopped")
	}()

	return out, nil
}

func (s *PollingSource[T]) poll(ctx context.Context, out chan<- []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	items, err := s.fetch(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch items", "error", err)

		return
	}

	if s.seen && reflect.DeepEqual(items, s.last) {
		return
	}

	s.last = items
	s.seen = true

	select {
	case out <- items:
	case <-ctx.Done():
	}
}
