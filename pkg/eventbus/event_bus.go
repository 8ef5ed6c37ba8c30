// Package eventbus mirrors connection events to out-of-process observers.
package eventbus

import (
	"context"

	"github.com/dukex/operion-connections/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, key string, event events.Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives the key the event was published with and the decoded event.
type EventHandler func(ctx context.Context, key string, event events.Event) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
