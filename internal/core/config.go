package core

import "time"

// Limits bounds what a single inbound message may carry and how often.
type Limits struct {
	MaxPayloadBytes  int
	MaxNameLen       int
	MaxRoomLen       int
	MaxAvatarLen     int
	MaxChatLen       int
	MaxColorLen      int
	ChatInterval     time.Duration
	PositionInterval time.Duration
}

// Config holds the hub tunables.
type Config struct {
	Limits
	HeartbeatInterval time.Duration
	StaleThreshold    time.Duration
	SweepInterval     time.Duration
}

// DefaultLimits returns the standard message limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes:  64 << 10,
		MaxNameLen:       64,
		MaxRoomLen:       64,
		MaxAvatarLen:     1024,
		MaxChatLen:       500,
		MaxColorLen:      32,
		ChatInterval:     300 * time.Millisecond,
		PositionInterval: 30 * time.Millisecond,
	}
}

// DefaultConfig returns the standard hub configuration.
func DefaultConfig() Config {
	return Config{
		Limits:            DefaultLimits(),
		HeartbeatInterval: 30 * time.Second,
		StaleThreshold:    120 * time.Second,
		SweepInterval:     60 * time.Second,
	}
}
