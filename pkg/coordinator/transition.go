package coordinator

import (
	"log/slog"
	"slices"

	"github.com/dukex/operion-connections/pkg/events"
	"github.com/dukex/operion-connections/pkg/models"
)

// state is everything the dispatch loop owns.
type state struct {
	connection  *models.Connection
	credentials *models.Credentials
	generation  uint64
}

// Inputs that never leave the coordinator.
type (
	assign struct {
		connection *models.Connection
	}

	connectorResult struct {
		generation uint64
		connector  *models.Connector
		err        error
	}

	credentialsResult struct {
		generation  uint64
		connectorID string
		credentials *models.Credentials
		err         error
	}

	acquireRequest struct{}
)

// Effects requested by a transition, run by the dispatch loop in order.
type (
	emit struct {
		event events.Event
	}

	loadConnector struct {
		generation  uint64
		connectorID string
	}

	fetchCredentials struct {
		generation  uint64
		connectorID string
	}

	acquire struct {
		connectorID string
	}

	save struct {
		connection *models.Connection
		onSuccess  func(*models.Connection)
		onError    func(error)
		err        error
	}

	note struct {
		level slog.Level
		msg   string
		args  []any
	}
)

// transition computes the next state for one input. It does not touch the stores; every
// side effect is described in the returned effects.
func transition(s state, in any) (state, []any) {
	switch in := in.(type) {
	case assign:
		s.connection = in.connection.Clone()
		s.generation++

		return s, []any{emit{events.CheckConnector{Connection: s.connection.Clone()}}}

	case events.CheckConnector:
		if s.connection == nil {
			return s, nil
		}

		if s.connection.Connector == nil && s.connection.ConnectorID != "" {
			return s, []any{loadConnector{generation: s.generation, connectorID: s.connection.ConnectorID}}
		}

		return s, []any{emit{events.CheckCredentials{ConnectorID: s.connection.ConnectorID}}}

	case connectorResult:
		if in.generation != s.generation || s.connection == nil {
			return s, []any{staleNote("connector", in.generation, s.generation)}
		}

		err := in.err
		if err == nil && (in.connector == nil || in.connector.ID == "") {
			err = ErrConnectorNotFound
		}

		if err != nil {
			return s, []any{
				note{level: slog.LevelInfo, msg: "Failed to fetch connector", args: []any{"connector_id", s.connection.ConnectorID, "error", err}},
				emit{events.CheckCredentials{Connection: s.connection.Clone(), Error: err.Error()}},
			}
		}

		connection := s.connection.Clone()
		connection.Connector = in.connector.Clone()
		connection.Icon = in.connector.Icon
		s.connection = connection

		return s, []any{emit{events.CheckCredentials{Connection: connection.Clone()}}}

	case events.CheckCredentials:
		if s.connection == nil || s.connection.ConnectorID == "" {
			return s, []any{emit{events.SetConnection{Connection: s.connection.Clone()}}}
		}

		connectorID := s.connection.ConnectorID
		if s.credentials == nil || !s.credentials.ValidFor(connectorID) {
			return s, []any{fetchCredentials{generation: s.generation, connectorID: connectorID}}
		}

		return s, []any{emit{events.SetConnection{Connection: s.connection.Clone()}}}

	case credentialsResult:
		if in.generation != s.generation || s.connection == nil {
			return s, []any{staleNote("credentials", in.generation, s.generation)}
		}

		var effects []any

		if in.err != nil {
			effects = append(effects, note{
				level: slog.LevelInfo,
				msg:   "Failed to fetch connector credentials",
				args:  []any{"connector_id", in.connectorID, "error", in.err},
			})
		} else {
			credentials := models.Credentials{}
			if in.credentials != nil {
				credentials = *in.credentials
			}

			credentials.ConnectorID = in.connectorID
			s.credentials = &credentials
		}

		return s, append(effects, emit{events.SetConnection{Connection: s.connection.Clone()}})

	case events.SetConnection:
		return s, nil

	case events.SetName:
		return edit(s, "name", func(c *models.Connection) { c.Name = in.Name })

	case events.SetDescription:
		return edit(s, "description", func(c *models.Connection) { c.Description = in.Description })

	case events.SetTags:
		return edit(s, "tags", func(c *models.Connection) { c.Tags = slices.Clone(in.Tags) })

	case events.SaveConnection:
		connection := in.Connection
		if connection == nil {
			connection = s.connection
		}

		if connection == nil {
			return s, []any{save{onSuccess: in.OnSuccess, onError: in.OnError, err: ErrNoConnection}}
		}

		payload := connection.Clone()
		if payload.Connector != nil {
			payload.Connector.StripPropertyValues()
		}

		return s, []any{save{connection: payload, onSuccess: in.OnSuccess, onError: in.OnError}}

	case acquireRequest:
		if s.connection == nil || s.connection.ConnectorID == "" {
			s.credentials = nil

			return s, nil
		}

		return s, []any{acquire{connectorID: s.connection.ConnectorID}}

	default:
		return s, []any{note{level: slog.LevelDebug, msg: "Ignoring unknown input", args: []any{"input", in}}}
	}
}

func edit(s state, field string, apply func(*models.Connection)) (state, []any) {
	if s.connection == nil {
		return s, []any{note{level: slog.LevelDebug, msg: "No connection to edit", args: []any{"field", field}}}
	}

	connection := s.connection.Clone()
	apply(connection)
	s.connection = connection

	return s, nil
}

func staleNote(result string, got, current uint64) note {
	return note{
		level: slog.LevelDebug,
		msg:   "Dropping result of superseded chain",
		args:  []any{"result", result, "generation", got, "current_generation", current},
	}
}
