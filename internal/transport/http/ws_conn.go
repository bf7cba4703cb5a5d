package http

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/presence-relay/internal/core"
)

// wsConn adapts a websocket connection to core.Conn. Outbound frames go
// through a bounded queue drained by the handler's write loop.
type wsConn struct {
	ws          *websocket.Conn
	cancel      context.CancelFunc
	ctx         context.Context
	pingTimeout time.Duration

	mu      sync.Mutex
	out     chan []byte
	closed  bool
	closing chan struct{}

	probing atomic.Bool
}

func newWSConn(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, queue int, pingTimeout time.Duration) *wsConn {
	return &wsConn{
		ws:          ws,
		ctx:         ctx,
		cancel:      cancel,
		pingTimeout: pingTimeout,
		out:         make(chan []byte, queue),
		closing:     make(chan struct{}),
	}
}

// Send queues payload without blocking.
func (c *wsConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.out <- payload:
		return nil
	default:
		return core.ErrSlowConsumer
	}
}

// Close stops accepting frames and starts a normal closure handshake. The
// handler's read loop ends once the peer answers.
func (c *wsConn) Close() {
	if !c.markClosed() {
		return
	}
	close(c.closing)
	go func() {
		_ = c.ws.Close(websocket.StatusNormalClosure, "closing")
	}()
}

// graceful reports whether Close started a closure handshake.
func (c *wsConn) graceful() bool {
	select {
	case <-c.closing:
		return true
	default:
		return false
	}
}

// Terminate drops the underlying connection immediately.
func (c *wsConn) Terminate() {
	c.markClosed()
	c.cancel()
	_ = c.ws.CloseNow()
}

// Ping sends a websocket ping in the background; pong runs once the peer answers.
// At most one ping is in flight per connection.
func (c *wsConn) Ping(pong func()) {
	if !c.Open() || !c.probing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.probing.Store(false)
		ctx, cancel := context.WithTimeout(c.ctx, c.pingTimeout)
		defer cancel()
		if err := c.ws.Ping(ctx); err == nil {
			pong()
		}
	}()
}

// Open reports whether the connection still accepts frames.
func (c *wsConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.ctx.Err() == nil
}

func (c *wsConn) markClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	return true
}
