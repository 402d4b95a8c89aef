package core

import "errors"

var (
	// ErrDuplicateConnection is returned when a presence record is added for a
	// connection id that is already live. This indicates a bug in the caller,
	// not a recoverable condition.
	ErrDuplicateConnection = errors.New("duplicate connection id")

	// ErrHubStopped is returned when a new connection arrives after Stop.
	ErrHubStopped = errors.New("hub stopped")
)
