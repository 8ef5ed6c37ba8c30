package coordinator

import "errors"

var (
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("coordinator closed")
	// ErrNoConnection is passed to OnError when a save has no connection to persist.
	ErrNoConnection = errors.New("no connection to save")
	// ErrConnectorNotFound is carried by the check-credentials event when the store returned a
	// connector without an id.
	ErrConnectorNotFound = errors.New("connector not found")
	// ErrUnsupportedEvent is returned by Emit for events only the coordinator may produce.
	ErrUnsupportedEvent = errors.New("event can not be emitted by callers")
)
