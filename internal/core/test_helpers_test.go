package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type fakeConn struct {
	mu         sync.Mutex
	frames     chan []byte
	closed     bool
	terminated bool
	failSend   bool
	panicOn    string
	autoPong   bool
	pings      int
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan []byte, 256), autoPong: true}
}

func (c *fakeConn) Send(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicOn != "" && bytes.Contains(p, []byte(c.panicOn)) {
		panic("send exploded")
	}
	if c.closed || c.terminated {
		return ErrConnClosed
	}
	if c.failSend {
		return errors.New("broken pipe")
	}
	select {
	case c.frames <- p:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) Terminate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminated = true
}

func (c *fakeConn) Ping(pong func()) {
	c.mu.Lock()
	c.pings++
	auto := c.autoPong
	c.mu.Unlock()
	if auto {
		go pong()
	}
}

func (c *fakeConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !c.terminated
}

func (c *fakeConn) Pings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pings
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Terminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated
}

func (c *fakeConn) set(fn func(*fakeConn)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

func newTestHub(t *testing.T) (*Hub, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	hub := NewHub(DefaultConfig(), WithClock(mock))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, mock
}

// connectClient registers a fake connection and consumes its id frame.
func connectClient(t *testing.T, hub *Hub) (string, *fakeConn) {
	t.Helper()

	conn := newFakeConn()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, err := hub.Connect(ctx, conn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	var msg struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	mustDecode(t, mustFrame(t, conn, "id"), &msg)
	if msg.ID != id {
		t.Fatalf("id frame %q does not match assigned id %q", msg.ID, id)
	}
	return id, conn
}

// send delivers v as one inbound frame and waits until the hub has handled it.
func send(t *testing.T, hub *Hub, id string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	sendRaw(t, hub, id, data)
}

func sendRaw(t *testing.T, hub *Hub, id string, data []byte) {
	t.Helper()

	if err := hub.Deliver(id, data); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	settle(t, hub)
}

// settle blocks until every event already handed to the hub is processed.
func settle(t *testing.T, hub *Hub) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.do(ctx, func() {}); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func joinRoom(t *testing.T, hub *Hub, id string, conn *fakeConn, room, name string) {
	t.Helper()

	send(t, hub, id, map[string]any{"type": "join", "room": room, "name": name})
	mustFrame(t, conn, "joined")
}

func frameType(t *testing.T, data []byte) string {
	t.Helper()

	var env struct {
		Type string `json:"type"`
	}
	mustDecode(t, data, &env)
	return env.Type
}

// mustFrame waits for the next frame of the given type, skipping others.
func mustFrame(t *testing.T, conn *fakeConn, typ string) []byte {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case data := <-conn.frames:
			if frameType(t, data) == typ {
				return data
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected frame type %q not received", typ)
	return nil
}

// nextFrame returns the very next frame, whatever its type.
func nextFrame(t *testing.T, conn *fakeConn) []byte {
	t.Helper()

	select {
	case data := <-conn.frames:
		return data
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame received")
		return nil
	}
}

// noFrame fails if a frame of the given type is already queued on conn.
func noFrame(t *testing.T, conn *fakeConn, typ string) {
	t.Helper()

	for {
		select {
		case data := <-conn.frames:
			if frameType(t, data) == typ {
				t.Fatalf("unexpected frame %s", data)
			}
		default:
			return
		}
	}
}

func mustDecode(t *testing.T, data []byte, v any) {
	t.Helper()

	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
