package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered chat user.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Message represents a chat message in the archive. ID is assigned by the
// archive in append order and defines the canonical message order.
type Message struct {
	ID        int64
	UserID    int64
	Username  string
	Body      string
	ImageURL  string
	CreatedAt time.Time
}

// UserStore handles user persistence. It doubles as the directory the chat
// core uses to resolve a user id into a display name.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username. Returns ErrNotFound if absent.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// MessageStore is the append-only message archive.
type MessageStore interface {
	// AppendMessage persists a message and returns the stored record with its
	// assigned ID. The input message is not mutated.
	AppendMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListMessages returns the full history ordered by ID ascending.
	ListMessages(ctx context.Context) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	MessageStore

	// Close closes the underlying storage.
	Close() error
}
