package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/operion-connections/pkg/channels/gochannel"
	"github.com/dukex/operion-connections/pkg/channels/kafka"
	"github.com/dukex/operion-connections/pkg/eventbus"
)

const serviceName = "operion-connections"

// NewEventBus creates the event bus for the provider. An empty provider uses the in-process bus.
func NewEventBus(provider string, logger *slog.Logger) (*eventbus.WatermillEventBus, error) {
	var (
		pub message.Publisher
		sub message.Subscriber
		err error
	)

	switch provider {
	case "", "gochannel":
		pub, sub, err = gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	case "kafka":
		pub, sub, err = kafka.CreateChannel(watermill.NewSlogLogger(logger), serviceName)
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s pub/sub: %w", provider, err)
	}

	return eventbus.NewWatermillEventBus(logger, pub, sub), nil
}
