package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbadar/chatrelay/internal/auth"
	"github.com/tbadar/chatrelay/internal/config"
	"github.com/tbadar/chatrelay/internal/core"
	"github.com/tbadar/chatrelay/internal/proto"
	"github.com/tbadar/chatrelay/internal/store/memory"
)

// startTestServer spins up the full HTTP stack over an in-memory store.
func startTestServer(t *testing.T) (*httptest.Server, *memory.MemoryStore, *auth.Service) {
	t.Helper()

	st := memory.New()
	disabledLogger := zerolog.New(nil)

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	cfg := config.Default()
	cfg.Addr = ":0"

	hub := core.NewHub(st, st, proto.EncodeEvent, cfg.SendBuffer, &disabledLogger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, authService, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st, authService
}
