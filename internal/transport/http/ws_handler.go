package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/presence-relay/internal/config"
)

// WSHandler upgrades HTTP connections and bridges them to the relay hub.
type WSHandler struct {
	hub Relay
	cfg config.TransportConfig
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub Relay, cfg config.TransportConfig, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, cfg: cfg, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(h.cfg.ReadLimit)

	// Reads get their own context: cancelling a read aborts the connection,
	// which must not happen while a normal closure handshake is in flight.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	readCtx, cancelRead := context.WithCancel(r.Context())
	defer cancelRead()

	wc := newWSConn(ctx, cancel, conn, h.cfg.SendQueue, h.cfg.PingTimeout)
	id, err := h.hub.Connect(ctx, wc)
	if err != nil {
		h.log.Warn().Err(err).Msg("register ws connection")
		conn.Close(websocket.StatusTryAgainLater, "relay unavailable")
		return
	}
	defer func() {
		if err := h.hub.Disconnect(id); err != nil {
			h.log.Debug().Err(err).Str("session_id", id).Msg("disconnect after hub stop")
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(readCtx, conn, id)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, wc, id)
	}()

	err = <-errCh
	cancel() // stop the writer and pending pings
	if !wc.graceful() {
		cancelRead()
	}
	if rest := <-errCh; err == nil {
		err = rest
	}
	wc.markClosed()

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = "connection error"
			h.log.Warn().Err(err).Str("session_id", id).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, id string) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if err := h.hub.Deliver(id, data); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, wc *wsConn, id string) error {
	for {
		select {
		case payload := <-wc.out:
			writeCtx, cancel := context.WithTimeout(ctx, h.cfg.WriteTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Str("session_id", id).Msg("write ws frame")
				return err
			}
		case <-wc.closing:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
