package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/presence-relay/internal/config"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Relay.StaleThreshold = 0
	logger := zerolog.Nop()

	if _, err := New(&cfg, &logger); err == nil {
		t.Fatalf("expected error for invalid config")
	}
}

func TestHubConfigMapsRelaySettings(t *testing.T) {
	rc := config.Default().Relay
	rc.ChatInterval = time.Second
	rc.MaxNameLen = 10

	hc := HubConfig(rc)
	if hc.ChatInterval != time.Second || hc.MaxNameLen != 10 {
		t.Fatalf("limits not mapped: %+v", hc.Limits)
	}
	if hc.StaleThreshold != rc.StaleThreshold || hc.SweepInterval != rc.SweepInterval {
		t.Fatalf("liveness timings not mapped: %+v", hc)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	logger := zerolog.Nop()

	a, err := New(&cfg, &logger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("run did not stop")
	}
}
