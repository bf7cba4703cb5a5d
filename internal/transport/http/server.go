package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/presence-relay/internal/config"
	"github.com/vovakirdan/presence-relay/internal/core"
)

// Relay is the part of the hub the HTTP layer talks to.
type Relay interface {
	Connect(ctx context.Context, conn core.Conn) (string, error)
	Deliver(id string, data []byte) error
	Disconnect(id string) error
	Rooms(ctx context.Context) ([]core.RoomInfo, error)
	Stats(ctx context.Context) (core.Stats, error)
}

// NewServer builds an HTTP server with the relay routes.
// WebSocket upgrades bypass gin, whose response writer cannot be hijacked once
// the upgrade has written its status; everything else goes through the router.
func NewServer(hub Relay, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, logger)
	api := router.Group("/api")
	api.GET("/rooms", rooms.ListRooms)
	api.GET("/stats", rooms.Stats)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg.Transport, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
