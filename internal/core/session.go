package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tbadar/chatrelay/internal/store"
)

type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateActive
	stateClosed
)

// Session is the per-connection state machine. A connection starts
// unauthenticated, becomes active after a successful auth event and ends
// closed. The protocol is lenient: events that arrive in the wrong state are
// ignored and never terminate the connection.
//
// Handlers are called sequentially by the connection's read loop, so inbound
// order is preserved per connection. Close may additionally be called from the
// transport's close path or from the hub when a broadcast fails, hence the
// state lock.
type Session struct {
	id       string
	hub      *Hub
	outbound chan []byte
	done     chan struct{}

	mu          sync.Mutex
	state       sessionState
	userID      int64
	displayName string
}

// ID returns the connection id.
func (s *Session) ID() string {
	return s.id
}

// Outbound is the stream of encoded frames the transport must write out.
func (s *Session) Outbound() <-chan []byte {
	return s.outbound
}

// Done is closed when the session reaches its terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// HandleAuth processes an auth event. An unknown user id leaves the session
// unauthenticated so the client may retry; no error is surfaced. On success
// the session joins the registry, receives the full history directly and a
// join status is broadcast to everyone.
func (s *Session) HandleAuth(ctx context.Context, userID int64) {
	s.mu.Lock()
	if s.state != stateUnauthenticated {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	user, err := s.hub.directory.GetUserByID(ctx, userID)
	if err != nil {
		s.hub.log.Debug().Err(err).Int64("user_id", userID).Str("conn_id", s.id).Msg("auth lookup failed")
		return
	}

	s.mu.Lock()
	if s.state != stateUnauthenticated {
		// Closed while we were looking the user up.
		s.mu.Unlock()
		return
	}
	p := &Presence{
		ConnID:      s.id,
		UserID:      user.ID,
		DisplayName: user.Username,
		Outbound:    s.outbound,
	}
	if err := s.hub.reg.Add(p); err != nil {
		s.mu.Unlock()
		s.hub.log.Error().Err(err).Str("conn_id", s.id).Msg("register presence")
		return
	}
	s.state = stateActive
	s.userID = user.ID
	s.displayName = user.Username
	s.mu.Unlock()

	if !s.sendHistory(ctx) {
		return
	}
	s.hub.broadcast(joinedEvent(user.Username))
}

// HandleMessage archives a chat message and broadcasts it. Messages that are
// empty after trimming whitespace are dropped without an archive append.
// Identity fields come from the session, never from the client payload.
func (s *Session) HandleMessage(ctx context.Context, content, imageURL string) {
	s.mu.Lock()
	if s.state != stateActive {
		s.mu.Unlock()
		return
	}
	userID, displayName := s.userID, s.displayName
	s.mu.Unlock()

	if strings.TrimSpace(content) == "" {
		return
	}

	msg, err := s.hub.archive.AppendMessage(ctx, &store.Message{
		UserID:    userID,
		Username:  displayName,
		Body:      content,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.hub.log.Error().Err(err).Str("conn_id", s.id).Msg("append message")
		return
	}

	s.hub.broadcast(messageEvent(msg))
}

// HandleTyping updates the typing flag and broadcasts the recomputed typing
// set. The set is re-broadcast even when the flag did not change.
func (s *Session) HandleTyping(typing bool) {
	s.mu.Lock()
	if s.state != stateActive {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.hub.reg.SetTyping(s.id, typing)
	s.hub.broadcast(typingEvent(TypingNames(s.hub.reg.Snapshot())))
}

// Close moves the session to its terminal state, removes the presence record
// and broadcasts a leave status if the session was active. It is idempotent;
// transports may signal close more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	s.mu.Unlock()

	close(s.done)
	s.hub.forget(s.id)

	if p, ok := s.hub.reg.Remove(s.id); ok {
		s.hub.broadcast(leftEvent(p.DisplayName))
	}
}

// sendHistory delivers the full archive to this connection only. Reports
// false if the session had to be dropped because its buffer rejected the
// frame.
func (s *Session) sendHistory(ctx context.Context) bool {
	messages, err := s.hub.archive.ListMessages(ctx)
	if err != nil {
		s.hub.log.Error().Err(err).Str("conn_id", s.id).Msg("load history")
		return true
	}

	payload, err := s.hub.encode(historyEvent(messages))
	if err != nil {
		s.hub.log.Error().Err(err).Str("conn_id", s.id).Msg("encode history")
		return true
	}

	select {
	case s.outbound <- payload:
		return true
	default:
		s.hub.log.Warn().Str("conn_id", s.id).Msg("history rejected, dropping connection")
		s.Close()
		return false
	}
}
