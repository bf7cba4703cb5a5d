package core

import (
	"time"

	"github.com/vovakirdan/presence-relay/internal/proto"
)

// Default display attributes for a fresh session.
const (
	DefaultSize  = 32
	DefaultColor = "#ffffff"
	DefaultRoom  = "lobby"
)

// Liveness is the heartbeat state of a session.
type Liveness int

const (
	// LivenessAlive means a heartbeat arrived within the stale threshold.
	LivenessAlive Liveness = iota
	// LivenessProbing means a ping is outstanding.
	LivenessProbing
	// LivenessStale means the session missed the stale threshold and is being reclaimed.
	LivenessStale
)

func (l Liveness) String() string {
	switch l {
	case LivenessAlive:
		return "alive"
	case LivenessProbing:
		return "probing"
	case LivenessStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Session is one connected participant. Sessions are owned by the Registry
// and only touched from the hub goroutine.
type Session struct {
	ID     string
	Name   string
	Avatar string
	Room   string
	X      float64
	Y      float64
	Size   float64
	Color  string

	ConnectedAt     time.Time
	LastHeartbeatAt time.Time
	LastActivityAt  time.Time
	LastChatAt      time.Time
	LastPositionAt  time.Time
	Liveness        Liveness

	Conn Conn
}

func newSession(id string, conn Conn, now time.Time) *Session {
	return &Session{
		ID:              id,
		Size:            DefaultSize,
		Color:           DefaultColor,
		ConnectedAt:     now,
		LastHeartbeatAt: now,
		LastActivityAt:  now,
		Liveness:        LivenessAlive,
		Conn:            conn,
	}
}

// Player returns the public attributes shared with room peers.
func (s *Session) Player() proto.Player {
	return proto.Player{
		ID:     s.ID,
		Name:   s.Name,
		Avatar: s.Avatar,
		X:      s.X,
		Y:      s.Y,
		Size:   s.Size,
		Color:  s.Color,
	}
}

// touch moves *ts forward to now; timestamps never go backwards.
func touch(ts *time.Time, now time.Time) {
	if now.After(*ts) {
		*ts = now
	}
}
