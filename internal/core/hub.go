package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tbadar/chatrelay/internal/store"
)

const defaultSendBuffer = 32

// Hub is the chat orchestrator. It owns the single registry and broadcaster
// for the process, resolves identities through the directory, archives
// messages and hands every new transport connection its session state
// machine.
type Hub struct {
	reg       *Registry
	bc        *Broadcaster
	directory store.UserStore
	archive   store.MessageStore
	encode    EncodeFunc
	log       *zerolog.Logger

	sendBuffer int

	mu       sync.Mutex
	sessions map[string]*Session
	stopped  bool
}

// NewHub constructs a hub. sendBuffer is the per-connection outbound queue
// size; values <= 0 fall back to the default.
func NewHub(directory store.UserStore, archive store.MessageStore, encode EncodeFunc, sendBuffer int, logger *zerolog.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}

	reg := NewRegistry()
	return &Hub{
		reg:        reg,
		bc:         NewBroadcaster(reg, encode, logger),
		directory:  directory,
		archive:    archive,
		encode:     encode,
		log:        logger,
		sendBuffer: sendBuffer,
		sessions:   make(map[string]*Session),
	}
}

// Connect is the single entry point for a new transport-level connection. It
// returns the session the transport must feed inbound events into and drain
// outbound frames from.
func (h *Hub) Connect() (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil, ErrHubStopped
	}

	s := &Session{
		id:       uuid.NewString(),
		hub:      h,
		outbound: make(chan []byte, h.sendBuffer),
		done:     make(chan struct{}),
	}
	h.sessions[s.id] = s
	return s, nil
}

// Run blocks until ctx is cancelled, then stops the hub.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.Stop()
}

// Stop closes every live session and rejects further connections.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Clients reports the number of live registered connections.
func (h *Hub) Clients() int {
	return h.reg.Len()
}

// broadcast fans event out and drops any connection whose outbound path
// rejected the frame, treating it the same as a disconnect. Dropping a
// connection triggers its own leave broadcast, which may in turn report more
// failures; every drop shrinks the registry, so this terminates.
func (h *Hub) broadcast(event *Event) {
	for _, connID := range h.bc.Broadcast(event) {
		h.log.Warn().Str("conn_id", connID).Msg("outbound buffer full, dropping connection")
		h.drop(connID)
	}
}

func (h *Hub) drop(connID string) {
	h.mu.Lock()
	s := h.sessions[connID]
	h.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

func (h *Hub) forget(connID string) {
	h.mu.Lock()
	delete(h.sessions, connID)
	h.mu.Unlock()
}
