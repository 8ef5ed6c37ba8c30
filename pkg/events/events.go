// Package events defines the closed set of connection editing events.
package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/operion-connections/pkg/models"
)

type EventType string

// Topic carries every connection event mirrored onto the event bus.
const Topic = "operion.connections.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Check-connector, check-credentials and set-connection form the chain started by assigning a connection.
	CheckConnectorEvent   EventType = "connection-check-connector"
	CheckCredentialsEvent EventType = "connection-check-credentials"
	SetConnectionEvent    EventType = "connection-set-connection"

	// Field edits and save requested by callers.
	SetNameEvent        EventType = "connection-set-name"
	SetDescriptionEvent EventType = "connection-set-description"
	SetTagsEvent        EventType = "connection-set-tags"
	SaveConnectionEvent EventType = "connection-save-connection"
)

// ErrUnknownEventType is returned when decoding an event kind outside the closed set.
var ErrUnknownEventType = errors.New("unknown connection event type")

// Event is implemented only by the event types of this package.
type Event interface {
	GetType() EventType
	connectionEvent()
}

// CheckConnector asks the coordinator to make sure the held connection has its connector loaded.
type CheckConnector struct {
	Connection *models.Connection `json:"connection,omitempty"`
}

func (CheckConnector) GetType() EventType { return CheckConnectorEvent }
func (CheckConnector) connectionEvent()   {}

// CheckCredentials asks the coordinator to make sure credentials are cached for the connector.
// Error is set when loading the connector failed; the chain goes on regardless.
type CheckCredentials struct {
	ConnectorID string             `json:"connector_id,omitempty"`
	Connection  *models.Connection `json:"connection,omitempty"`
	Error       string             `json:"error,omitempty"`
}

func (CheckCredentials) GetType() EventType { return CheckCredentialsEvent }
func (CheckCredentials) connectionEvent()   {}

// SetConnection ends the chain: connector and credentials checks are settled.
type SetConnection struct {
	Connection *models.Connection `json:"connection,omitempty"`
}

func (SetConnection) GetType() EventType { return SetConnectionEvent }
func (SetConnection) connectionEvent()   {}

type SetName struct {
	Name string `json:"name"`
}

func (SetName) GetType() EventType { return SetNameEvent }
func (SetName) connectionEvent()   {}

type SetDescription struct {
	Description string `json:"description"`
}

func (SetDescription) GetType() EventType { return SetDescriptionEvent }
func (SetDescription) connectionEvent()   {}

type SetTags struct {
	Tags []string `json:"tags"`
}

func (SetTags) GetType() EventType { return SetTagsEvent }
func (SetTags) connectionEvent()   {}

// SaveConnection persists Connection, or the held connection when nil.
// OnSuccess and OnError are optional and at most one of them is called, once.
type SaveConnection struct {
	Connection *models.Connection             `json:"connection,omitempty"`
	OnSuccess  func(saved *models.Connection) `json:"-"`
	OnError    func(err error)                `json:"-"`
}

func (SaveConnection) GetType() EventType { return SaveConnectionEvent }
func (SaveConnection) connectionEvent()   {}

// New returns a zero value of the event registered for eventType.
func New(eventType EventType) (Event, error) {
	switch eventType {
	case CheckConnectorEvent:
		return &CheckConnector{}, nil
	case CheckCredentialsEvent:
		return &CheckCredentials{}, nil
	case SetConnectionEvent:
		return &SetConnection{}, nil
	case SetNameEvent:
		return &SetName{}, nil
	case SetDescriptionEvent:
		return &SetDescription{}, nil
	case SetTagsEvent:
		return &SetTags{}, nil
	case SaveConnectionEvent:
		return &SaveConnection{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
}

// Decode unmarshals payload into the event registered for eventType.
func Decode(eventType EventType, payload []byte) (Event, error) {
	event, err := New(eventType)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}

	return event, nil
}
