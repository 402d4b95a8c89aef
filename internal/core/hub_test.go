package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tbadar/chatrelay/internal/core"
)

func TestAuthUnknownUserIsIgnored(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	sess := connect(t, hub)
	sess.HandleAuth(ctx, 42)

	if hub.Clients() != 0 {
		t.Fatalf("unknown user must not join the registry")
	}
	requireNoFrame(t, sess)

	// Still unauthenticated: messages are ignored, nothing archived.
	sess.HandleMessage(ctx, "hello", "")
	msgs, _ := st.ListMessages(ctx)
	if len(msgs) != 0 {
		t.Fatalf("message from unauthenticated session reached the archive")
	}

	// The connection may retry auth once the user exists.
	user := createUser(t, st, "taha")
	sess.HandleAuth(ctx, user.ID)
	if hub.Clients() != 1 {
		t.Fatalf("retry after failed auth should succeed")
	}
}

func TestAuthDeliversHistoryOnlyToNewConnection(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	glooby := createUser(t, st, "glooby")

	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	requireFrameType(t, a, "history")
	requireFrameType(t, a, "status") // own join echo

	a.HandleMessage(ctx, "hi", "")
	requireFrameType(t, a, "message")

	b := connect(t, hub)
	b.HandleAuth(ctx, glooby.ID)

	// B: history with the one archived message, then its own join status.
	history := requireFrameType(t, b, "history")
	messages, ok := history["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected history with 1 message, got %+v", history)
	}
	first := messages[0].(map[string]any)
	if first["id"].(float64) != 1 || first["username"] != "taha" || first["content"] != "hi" {
		t.Fatalf("unexpected history entry: %+v", first)
	}
	requireFrameType(t, b, "status")

	// A: join status only, never B's history.
	status := requireFrameType(t, a, "status")
	if status["content"] != "glooby joined" {
		t.Fatalf("unexpected status: %+v", status)
	}
	requireNoFrame(t, a)
}

func TestMessageOrderingPerSender(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	glooby := createUser(t, st, "glooby")

	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	b := connect(t, hub)
	b.HandleAuth(ctx, glooby.ID)
	drain(a)
	drain(b)

	a.HandleMessage(ctx, "first", "")
	a.HandleMessage(ctx, "second", "")

	m1 := requireFrameType(t, b, "message")["message"].(map[string]any)
	m2 := requireFrameType(t, b, "message")["message"].(map[string]any)

	if m1["content"] != "first" || m2["content"] != "second" {
		t.Fatalf("messages reordered: %v then %v", m1["content"], m2["content"])
	}
	if m1["id"].(float64) >= m2["id"].(float64) {
		t.Fatalf("archive ids not increasing: %v, %v", m1["id"], m2["id"])
	}
}

func TestEmptyMessageIsRejected(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	drain(a)

	a.HandleMessage(ctx, "   ", "")
	a.HandleMessage(ctx, "\n\t", "")

	requireNoFrame(t, a)
	msgs, _ := st.ListMessages(ctx)
	if len(msgs) != 0 {
		t.Fatalf("whitespace-only message reached the archive")
	}
}

func TestTypingSetTracksFlags(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	glooby := createUser(t, st, "glooby")
	carol := createUser(t, st, "carol")

	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	b := connect(t, hub)
	b.HandleAuth(ctx, glooby.ID)
	c := connect(t, hub)
	c.HandleAuth(ctx, carol.ID)
	drain(a)
	drain(b)
	drain(c)

	a.HandleTyping(true)
	b.HandleTyping(true)
	drain(a)
	drain(b)

	// C sees the second typing broadcast last; it must contain exactly A and B.
	requireFrameType(t, c, "typing")
	users := stringSet(requireFrameType(t, c, "typing")["users"].([]any))
	if len(users) != 2 || !users["taha"] || !users["glooby"] {
		t.Fatalf("unexpected typing set: %v", users)
	}

	a.HandleTyping(false)
	users = stringSet(requireFrameType(t, c, "typing")["users"].([]any))
	if users["taha"] || !users["glooby"] {
		t.Fatalf("typing set still contains taha: %v", users)
	}
}

func TestCloseBroadcastsLeaveOnce(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	glooby := createUser(t, st, "glooby")

	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	b := connect(t, hub)
	b.HandleAuth(ctx, glooby.ID)
	drain(a)

	// Transport layers can signal close more than once.
	b.Close()
	b.Close()

	status := requireFrameType(t, a, "status")
	if status["content"] != "glooby left" {
		t.Fatalf("unexpected status: %+v", status)
	}
	requireNoFrame(t, a)

	if hub.Clients() != 1 {
		t.Fatalf("expected 1 live client, got %d", hub.Clients())
	}
}

func TestCloseBeforeAuthIsSilent(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	drain(a)

	// An unauthenticated connection leaving announces nothing.
	b := connect(t, hub)
	b.Close()

	requireNoFrame(t, a)
}

func TestClosedSessionIgnoresEvents(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	a.Close()

	a.HandleMessage(ctx, "ghost", "")
	a.HandleTyping(true)
	a.HandleAuth(ctx, taha.ID)

	if hub.Clients() != 0 {
		t.Fatalf("closed session re-entered the registry")
	}
	msgs, _ := st.ListMessages(ctx)
	if len(msgs) != 0 {
		t.Fatalf("closed session archived a message")
	}
}

func TestSlowClientIsDroppedAsDisconnect(t *testing.T) {
	const buffer = 4
	hub, st := newTestHub(t, buffer)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	glooby := createUser(t, st, "glooby")

	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)
	b := connect(t, hub)
	b.HandleAuth(ctx, glooby.ID)
	drain(a)
	drain(b)

	// A stops draining; fill its outbound queue with broadcasts.
	for i := 0; i < buffer; i++ {
		b.HandleMessage(ctx, "spam", "")
		drain(b)
	}

	// The next broadcast cannot be enqueued for A: dropped like a disconnect,
	// the other clients keep receiving.
	b.HandleMessage(ctx, "overflow", "")

	if hub.Clients() != 1 {
		t.Fatalf("expected slow client to be dropped, have %d clients", hub.Clients())
	}

	overflow := requireFrameType(t, b, "message")["message"].(map[string]any)
	if overflow["content"] != "overflow" {
		t.Fatalf("broadcast to healthy client lost: %+v", overflow)
	}
	status := requireFrameType(t, b, "status")
	if status["content"] != "taha left" {
		t.Fatalf("expected leave for dropped client, got %+v", status)
	}

	select {
	case <-a.Done():
	default:
		t.Fatalf("dropped session not marked done")
	}
}

func TestHubStopRejectsNewConnections(t *testing.T) {
	hub, st := newTestHub(t, 0)
	ctx := context.Background()

	taha := createUser(t, st, "taha")
	a := connect(t, hub)
	a.HandleAuth(ctx, taha.ID)

	hub.Stop()

	if hub.Clients() != 0 {
		t.Fatalf("stop left %d clients registered", hub.Clients())
	}
	select {
	case <-a.Done():
	default:
		t.Fatalf("stop did not close live session")
	}

	if _, err := hub.Connect(); !errors.Is(err, core.ErrHubStopped) {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
}
