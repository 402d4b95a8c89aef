// Package memory provides an in-memory store.Store implementation. It backs
// the "memory" storage mode and the core tests, where a database file would
// only get in the way.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tbadar/chatrelay/internal/store"
)

// MemoryStore implements store.Store with mutex-guarded maps.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]*store.User
	byUsername map[string]int64
	messages   []*store.Message
	nextUserID int64
	nextMsgID  int64
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]*store.User),
		byUsername: make(map[string]int64),
		nextUserID: 1,
		nextMsgID:  1,
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateUser creates a new user with hashed password.
func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, fmt.Errorf("insert user: username %q taken", username)
	}

	user := &store.User{
		ID:           s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextUserID++
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID

	u := *user
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := *user
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// AppendMessage persists a message and returns the stored record with its assigned ID.
func (s *MemoryStore) AppendMessage(_ context.Context, msg *store.Message) (*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *msg
	stored.ID = s.nextMsgID
	s.nextMsgID++
	s.messages = append(s.messages, &stored)

	m := stored
	return &m, nil
}

// ListMessages returns the full history ordered by ID ascending.
func (s *MemoryStore) ListMessages(_ context.Context) ([]*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]*store.Message, 0, len(s.messages))
	for _, m := range s.messages {
		copied := *m
		messages = append(messages, &copied)
	}
	return messages, nil
}
