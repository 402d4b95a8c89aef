// Interactive smoke client for the relay protocol. Authenticates with a user
// id, prints every event the server pushes and sends stdin lines as chat
// messages. Lines starting with "/typing on|off" toggle the typing flag.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/tbadar/chatrelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	userID := flag.Int64("user-id", 1, "user id to authenticate as")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v any) {
		if writeErr := wsjson.Write(ctx, conn, v); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.Inbound{Type: proto.InboundTypeAuth, UserID: *userID})

	go func() {
		for {
			_, data, readErr := conn.Read(ctx)
			if readErr != nil {
				cancel()
				return
			}
			var pretty map[string]any
			if json.Unmarshal(data, &pretty) == nil {
				fmt.Printf("<- %v\n", pretty)
			} else {
				fmt.Printf("<- %s\n", data)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "/typing on"):
			send(proto.Inbound{Type: proto.InboundTypeTyping, IsTyping: true})
		case strings.HasPrefix(line, "/typing off"):
			send(proto.Inbound{Type: proto.InboundTypeTyping, IsTyping: false})
		case strings.TrimSpace(line) != "":
			send(proto.Inbound{Type: proto.InboundTypeMessage, Content: line})
		}
	}
	return scanner.Err()
}
