// Package proto defines the JSON wire protocol spoken over the persistent
// connection and the mapping from core events onto it.
package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tbadar/chatrelay/internal/core"
	"github.com/tbadar/chatrelay/internal/store"
)

const (
	InboundTypeAuth    = "auth"
	InboundTypeMessage = "message"
	InboundTypeTyping  = "typing"

	OutboundTypeHistory = "history"
	OutboundTypeMessage = "message"
	OutboundTypeTyping  = "typing"
	OutboundTypeStatus  = "status"
)

// Inbound is the flat envelope for client events. Only the fields relevant to
// Type are populated.
type Inbound struct {
	Type     string `json:"type"`
	UserID   int64  `json:"userId,omitempty"`
	Content  string `json:"content,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	IsTyping bool   `json:"isTyping,omitempty"`
}

// ChatMessage is the wire shape of an archived message.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEvent delivers the full message history to one connection.
type HistoryEvent struct {
	Type     string        `json:"type"`
	Messages []ChatMessage `json:"messages"`
}

// MessageEvent announces a new chat message.
type MessageEvent struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

// TypingEvent announces the display names currently typing.
type TypingEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

// StatusEvent announces a join or leave.
type StatusEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// EncodeEvent maps a core event onto its wire representation. The switch is
// exhaustive over the event kinds; an unknown kind is a programming error and
// is reported rather than encoded.
func EncodeEvent(event *core.Event) ([]byte, error) {
	switch event.Kind {
	case core.EventHistory:
		messages := make([]ChatMessage, 0, len(event.Messages))
		for _, m := range event.Messages {
			messages = append(messages, toWireMessage(m))
		}
		return json.Marshal(HistoryEvent{Type: OutboundTypeHistory, Messages: messages})
	case core.EventMessage:
		return json.Marshal(MessageEvent{Type: OutboundTypeMessage, Message: toWireMessage(event.Message)})
	case core.EventTyping:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return json.Marshal(TypingEvent{Type: OutboundTypeTyping, Users: users})
	case core.EventStatus:
		return json.Marshal(StatusEvent{Type: OutboundTypeStatus, Content: event.Content})
	default:
		return nil, fmt.Errorf("proto: unknown event kind %d", event.Kind)
	}
}

func toWireMessage(m *store.Message) ChatMessage {
	return ChatMessage{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		Content:   m.Body,
		ImageURL:  m.ImageURL,
		Timestamp: m.CreatedAt,
	}
}
