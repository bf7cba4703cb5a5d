package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr              string          `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration   `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string          `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string          `mapstructure:"log_format" yaml:"log_format"`
	Relay             RelayConfig     `mapstructure:"relay" yaml:"relay"`
	Transport         TransportConfig `mapstructure:"transport" yaml:"transport"`
}

// RelayConfig holds the message limits and liveness timings of the hub.
type RelayConfig struct {
	MaxPayloadBytes   int           `mapstructure:"max_payload_bytes" yaml:"max_payload_bytes"`
	MaxNameLen        int           `mapstructure:"max_name_len" yaml:"max_name_len"`
	MaxRoomLen        int           `mapstructure:"max_room_len" yaml:"max_room_len"`
	MaxAvatarLen      int           `mapstructure:"max_avatar_len" yaml:"max_avatar_len"`
	MaxChatLen        int           `mapstructure:"max_chat_len" yaml:"max_chat_len"`
	MaxColorLen       int           `mapstructure:"max_color_len" yaml:"max_color_len"`
	ChatInterval      time.Duration `mapstructure:"chat_interval" yaml:"chat_interval"`
	PositionInterval  time.Duration `mapstructure:"position_interval" yaml:"position_interval"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
	StaleThreshold    time.Duration `mapstructure:"stale_threshold" yaml:"stale_threshold"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// TransportConfig holds per-connection WebSocket settings.
type TransportConfig struct {
	ReadLimit    int64         `mapstructure:"read_limit" yaml:"read_limit"`
	SendQueue    int           `mapstructure:"send_queue" yaml:"send_queue"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	PingTimeout  time.Duration `mapstructure:"ping_timeout" yaml:"ping_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",
		Relay: RelayConfig{
			MaxPayloadBytes:   64 << 10,
			MaxNameLen:        64,
			MaxRoomLen:        64,
			MaxAvatarLen:      1024,
			MaxChatLen:        500,
			MaxColorLen:       32,
			ChatInterval:      300 * time.Millisecond,
			PositionInterval:  30 * time.Millisecond,
			HeartbeatInterval: 30 * time.Second,
			StaleThreshold:    120 * time.Second,
			SweepInterval:     60 * time.Second,
		},
		Transport: TransportConfig{
			ReadLimit:    1 << 20,
			SendQueue:    64,
			WriteTimeout: 10 * time.Second,
			PingTimeout:  10 * time.Second,
		},
	}
}

// UpdateFrom overwrites non-zero top-level values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
}

// Validate reports every non-positive tunable.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v int64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	positive("relay.max_payload_bytes", int64(c.Relay.MaxPayloadBytes))
	positive("relay.max_name_len", int64(c.Relay.MaxNameLen))
	positive("relay.max_room_len", int64(c.Relay.MaxRoomLen))
	positive("relay.max_avatar_len", int64(c.Relay.MaxAvatarLen))
	positive("relay.max_chat_len", int64(c.Relay.MaxChatLen))
	positive("relay.max_color_len", int64(c.Relay.MaxColorLen))
	positive("relay.chat_interval", int64(c.Relay.ChatInterval))
	positive("relay.position_interval", int64(c.Relay.PositionInterval))
	positive("relay.heartbeat_interval", int64(c.Relay.HeartbeatInterval))
	positive("relay.stale_threshold", int64(c.Relay.StaleThreshold))
	positive("relay.sweep_interval", int64(c.Relay.SweepInterval))
	positive("transport.read_limit", c.Transport.ReadLimit)
	positive("transport.send_queue", int64(c.Transport.SendQueue))
	positive("transport.write_timeout", int64(c.Transport.WriteTimeout))
	positive("transport.ping_timeout", int64(c.Transport.PingTimeout))

	if c.Transport.ReadLimit > 0 && c.Transport.ReadLimit < int64(c.Relay.MaxPayloadBytes) {
		errs = append(errs, fmt.Errorf("transport.read_limit (%d) must not be below relay.max_payload_bytes (%d)",
			c.Transport.ReadLimit, c.Relay.MaxPayloadBytes))
	}
	return errors.Join(errs...)
}
