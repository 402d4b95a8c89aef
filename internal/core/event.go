package core

import (
	"fmt"

	"github.com/tbadar/chatrelay/internal/store"
)

// EventKind discriminates the closed set of outbound event variants. The wire
// encoder switches exhaustively over it, so adding a kind without teaching the
// encoder about it fails loudly instead of emitting garbage.
type EventKind int

const (
	// EventHistory delivers the full message history to one freshly
	// authenticated connection. It is never broadcast.
	EventHistory EventKind = iota
	// EventMessage announces a newly archived chat message.
	EventMessage
	// EventTyping announces the current set of typing display names.
	EventTyping
	// EventStatus announces a join or leave.
	EventStatus
)

// Event is what the core emits to connections.
type Event struct {
	Kind     EventKind
	Message  *store.Message   // EventMessage
	Messages []*store.Message // EventHistory
	Users    []string         // EventTyping
	Content  string           // EventStatus
}

// EncodeFunc turns an event into its wire representation. The broadcaster
// calls it exactly once per broadcast.
type EncodeFunc func(*Event) ([]byte, error)

func historyEvent(messages []*store.Message) *Event {
	return &Event{Kind: EventHistory, Messages: messages}
}

func messageEvent(msg *store.Message) *Event {
	return &Event{Kind: EventMessage, Message: msg}
}

func typingEvent(users []string) *Event {
	return &Event{Kind: EventTyping, Users: users}
}

func joinedEvent(displayName string) *Event {
	return &Event{Kind: EventStatus, Content: fmt.Sprintf("%s joined", displayName)}
}

func leftEvent(displayName string) *Event {
	return &Event{Kind: EventStatus, Content: fmt.Sprintf("%s left", displayName)}
}
