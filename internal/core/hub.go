package core

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Hub owns the session registry and the room index. All state changes run on
// the goroutine executing Run; the exported methods hand work to it.
type Hub struct {
	cfg       Config
	clock     clock.Clock
	log       zerolog.Logger
	registry  *Registry
	rooms     *RoomIndex
	validator *Validator

	register   chan registration
	inbound    chan frame
	pongs      chan string
	unregister chan string
	queries    chan func()
	done       chan struct{}

	reaped    map[string]struct{}
	reapQueue []string
}

// Stats is a point-in-time summary of the hub.
type Stats struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
}

type registration struct {
	conn  Conn
	reply chan string
}

type frame struct {
	id   string
	data []byte
}

// Option customizes a Hub.
type Option func(*Hub)

// WithClock sets the time source used for timestamps and tickers.
func WithClock(c clock.Clock) Option {
	return func(h *Hub) { h.clock = c }
}

// WithLogger sets the hub logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Hub) { h.log = l }
}

// NewHub creates a hub. Zero tunables in cfg fall back to DefaultConfig.
func NewHub(cfg Config, opts ...Option) *Hub {
	h := &Hub{
		cfg:        withDefaults(cfg),
		clock:      clock.New(),
		log:        zerolog.Nop(),
		register:   make(chan registration),
		inbound:    make(chan frame),
		pongs:      make(chan string),
		unregister: make(chan string),
		queries:    make(chan func()),
		done:       make(chan struct{}),
		reaped:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registry = NewRegistry(h.clock)
	h.rooms = NewRoomIndex()
	h.validator = NewValidator(h.cfg.Limits)
	return h
}

// Run processes hub events until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	heartbeat := h.clock.Ticker(h.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	sweep := h.clock.Ticker(h.cfg.SweepInterval)
	defer sweep.Stop()

	h.log.Info().
		Dur("heartbeat_interval", h.cfg.HeartbeatInterval).
		Dur("stale_threshold", h.cfg.StaleThreshold).
		Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case reg := <-h.register:
			reg.reply <- h.connect(reg.conn)
		case f := <-h.inbound:
			h.handleFrame(f)
		case id := <-h.pongs:
			h.markAlive(id)
		case id := <-h.unregister:
			h.depart(id)
		case <-heartbeat.C:
			h.probe()
		case <-sweep.C:
			h.sweep()
		case q := <-h.queries:
			q()
		}
		h.reconcile()
	}
}

// Connect registers conn as a new session and returns its ID.
// The ID announcement is queued on conn before Connect returns.
func (h *Hub) Connect(ctx context.Context, conn Conn) (string, error) {
	reply := make(chan string, 1)
	select {
	case h.register <- registration{conn: conn, reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-h.done:
		return "", ErrHubStopped
	}
	return <-reply, nil
}

// Deliver hands one inbound frame from session id to the hub.
func (h *Hub) Deliver(id string, data []byte) error {
	return enqueue(h, h.inbound, frame{id: id, data: data})
}

// Heartbeat records a heartbeat reply from session id.
func (h *Hub) Heartbeat(id string) error {
	return enqueue(h, h.pongs, id)
}

// Disconnect runs the departure path for session id. Repeated calls are no-ops.
func (h *Hub) Disconnect(id string) error {
	return enqueue(h, h.unregister, id)
}

// Rooms returns a snapshot of the current rooms.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	var rooms []RoomInfo
	err := h.do(ctx, func() { rooms = h.rooms.Rooms() })
	return rooms, err
}

// Stats returns session and room counts.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := h.do(ctx, func() {
		st = Stats{Sessions: h.registry.Len(), Rooms: h.rooms.Len()}
	})
	return st, err
}

// do runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case h.queries <- func() { fn(); close(finished) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubStopped
	}
	<-finished
	return nil
}

func enqueue[T any](h *Hub, ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) shutdown() {
	ids := h.registry.IDs()
	for _, id := range ids {
		if s, ok := h.registry.Get(id); ok {
			s.Conn.Close()
		}
	}
	h.log.Info().Int("sessions", len(ids)).Msg("hub stopped")
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = def.MaxPayloadBytes
	}
	if cfg.MaxNameLen <= 0 {
		cfg.MaxNameLen = def.MaxNameLen
	}
	if cfg.MaxRoomLen <= 0 {
		cfg.MaxRoomLen = def.MaxRoomLen
	}
	if cfg.MaxAvatarLen <= 0 {
		cfg.MaxAvatarLen = def.MaxAvatarLen
	}
	if cfg.MaxChatLen <= 0 {
		cfg.MaxChatLen = def.MaxChatLen
	}
	if cfg.MaxColorLen <= 0 {
		cfg.MaxColorLen = def.MaxColorLen
	}
	if cfg.ChatInterval <= 0 {
		cfg.ChatInterval = def.ChatInterval
	}
	if cfg.PositionInterval <= 0 {
		cfg.PositionInterval = def.PositionInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = def.StaleThreshold
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	return cfg
}
