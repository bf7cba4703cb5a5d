package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/presence-relay/internal/proto"
)

type frame struct {
	Type    string         `json:"type"`
	ID      string         `json:"id"`
	Room    string         `json:"room"`
	Name    string         `json:"name"`
	Text    string         `json:"text"`
	Message string         `json:"message"`
	Players []proto.Player `json:"players"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "tester", "display name to join with")
	room := flag.String("room", "lobby", "room name")
	text := flag.String("text", "hello from smoke test", "chat text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(v any) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	if err := mustSend(map[string]any{"type": proto.InboundTypeJoin, "name": *name, "room": *room}); err != nil {
		return err
	}

	var self string
	for {
		var msg frame
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		switch msg.Type {
		case proto.OutboundTypeID:
			self = msg.ID
			fmt.Printf("Session: id=%s\n", msg.ID)
		case proto.OutboundTypePlayers:
			fmt.Printf("Roster: %d other player(s)\n", len(msg.Players))
		case proto.OutboundTypeJoined:
			fmt.Printf("Joined: room=%s\n", msg.Room)
			if err := mustSend(map[string]any{"type": proto.InboundTypeChat, "text": *text}); err != nil {
				return err
			}
		case proto.OutboundTypeChat:
			fmt.Printf("Chat: id=%s name=%s text=%q\n", msg.ID, msg.Name, msg.Text)
			if msg.ID == self {
				return mustSend(map[string]any{"type": proto.InboundTypeLeave})
			}
		case proto.OutboundTypeError:
			return fmt.Errorf("server error: %s", msg.Message)
		default:
			fmt.Printf("Received: type=%s\n", msg.Type)
		}
	}
}
