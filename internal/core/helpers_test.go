package core_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbadar/chatrelay/internal/core"
	"github.com/tbadar/chatrelay/internal/proto"
	"github.com/tbadar/chatrelay/internal/store"
	"github.com/tbadar/chatrelay/internal/store/memory"
)

// newTestHub builds a hub over an in-memory store. All hub operations run
// synchronously in the caller's goroutine, so tests can assert on outbound
// channels without sleeping.
func newTestHub(t *testing.T, sendBuffer int) (*core.Hub, *memory.MemoryStore) {
	t.Helper()

	st := memory.New()
	logger := zerolog.New(nil)
	hub := core.NewHub(st, st, proto.EncodeEvent, sendBuffer, &logger)
	return hub, st
}

func createUser(t *testing.T, st store.UserStore, username string) *store.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func connect(t *testing.T, hub *core.Hub) *core.Session {
	t.Helper()

	sess, err := hub.Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return sess
}

// nextFrame pops the next queued outbound frame and decodes it. Fails if
// nothing is queued; handlers enqueue before returning, so a missing frame is
// a real bug, not a timing issue.
func nextFrame(t *testing.T, sess *core.Session) map[string]any {
	t.Helper()

	select {
	case payload := <-sess.Outbound():
		var frame map[string]any
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		return frame
	default:
		t.Fatalf("no outbound frame queued")
		return nil
	}
}

// requireFrameType asserts the next frame's type discriminator.
func requireFrameType(t *testing.T, sess *core.Session, wantType string) map[string]any {
	t.Helper()

	frame := nextFrame(t, sess)
	if frame["type"] != wantType {
		t.Fatalf("expected frame type %q, got %+v", wantType, frame)
	}
	return frame
}

func requireNoFrame(t *testing.T, sess *core.Session) {
	t.Helper()

	select {
	case payload := <-sess.Outbound():
		t.Fatalf("unexpected outbound frame: %s", payload)
	default:
	}
}

func drain(sess *core.Session) {
	for {
		select {
		case <-sess.Outbound():
		default:
			return
		}
	}
}

func stringSet(values []any) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			set[s] = true
		}
	}
	return set
}
