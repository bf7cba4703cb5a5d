package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/presence-relay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "cli-user", "display name")
	room := flag.String("room", "lobby", "room to join")
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

	if err := wsjson.Write(ctx, conn, map[string]any{"type": proto.InboundTypeJoin, "name": *name, "room": *room}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *name, *room)
	fmt.Println("Type messages and press Enter to send. /move X Y moves, /join ROOM switches rooms, /leave quits.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *name)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		var env proto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("decode frame: %v", err)
			continue
		}

		switch env.Type {
		case proto.OutboundTypeChat:
			var evt proto.Chat
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("%s: %s\n", evt.Name, evt.Text)
			}
		case proto.OutboundTypePlayerJoined:
			var evt proto.PlayerJoined
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("* %s joined\n", evt.Player.Name)
			}
		case proto.OutboundTypePlayerLeft:
			var evt proto.PlayerLeft
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("* %s left\n", evt.ID)
			}
		case proto.OutboundTypePlayers:
			var evt proto.Players
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("* %d other player(s) here\n", len(evt.Players))
			}
		case proto.OutboundTypeJoined:
			var evt proto.Joined
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("* joined %s\n", evt.Room)
			}
		case proto.OutboundTypePos:
			// too chatty for a terminal
		default:
			fmt.Printf("%s\n", data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, name string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			msg, quit := parseLine(strings.TrimSpace(line), name)
			if msg == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				log.Printf("send error: %v", err)
				return
			}
			if quit {
				return
			}
		}
	}
}

// parseLine turns a terminal line into an inbound frame. It reports quit for /leave.
func parseLine(line, name string) (map[string]any, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	switch fields[0] {
	case "/leave":
		return map[string]any{"type": proto.InboundTypeLeave}, true
	case "/join":
		if len(fields) < 2 {
			return nil, false
		}
		return map[string]any{"type": proto.InboundTypeJoin, "name": name, "room": fields[1]}, false
	case "/move":
		if len(fields) < 3 {
			return nil, false
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		if errX != nil || errY != nil {
			return nil, false
		}
		return map[string]any{"type": proto.InboundTypePosition, "x": x, "y": y}, false
	}
	return map[string]any{"type": proto.InboundTypeChat, "text": line}, false
}
