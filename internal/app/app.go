package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/presence-relay/internal/config"
	"github.com/vovakirdan/presence-relay/internal/core"
	transporthttp "github.com/vovakirdan/presence-relay/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hub := core.NewHub(HubConfig(cfg.Relay), core.WithLogger(logger.With().Str("component", "hub").Logger()))
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// HubConfig maps relay settings onto the hub configuration.
func HubConfig(rc config.RelayConfig) core.Config {
	return core.Config{
		Limits: core.Limits{
			MaxPayloadBytes:  rc.MaxPayloadBytes,
			MaxNameLen:       rc.MaxNameLen,
			MaxRoomLen:       rc.MaxRoomLen,
			MaxAvatarLen:     rc.MaxAvatarLen,
			MaxChatLen:       rc.MaxChatLen,
			MaxColorLen:      rc.MaxColorLen,
			ChatInterval:     rc.ChatInterval,
			PositionInterval: rc.PositionInterval,
		},
		HeartbeatInterval: rc.HeartbeatInterval,
		StaleThreshold:    rc.StaleThreshold,
		SweepInterval:     rc.SweepInterval,
	}
}

// Run starts the hub and the HTTP server and blocks until context cancellation or fatal error.
// On cancellation the listener stops first, then the hub closes every remaining connection.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		a.hub.Run(hubCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		// Hijacked websocket connections are not tracked by Shutdown; the hub closes them.
		stopHub()
		<-hubDone
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.log.Info().Msg("relay stopped")
	return err
}
