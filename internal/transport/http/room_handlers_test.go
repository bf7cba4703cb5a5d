package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/presence-relay/internal/config"
	"github.com/vovakirdan/presence-relay/internal/core"
)

type fakeRelay struct {
	rooms []core.RoomInfo
	stats core.Stats
	err   error
}

func (f *fakeRelay) Connect(context.Context, core.Conn) (string, error) { return "", f.err }
func (f *fakeRelay) Deliver(string, []byte) error                      { return f.err }
func (f *fakeRelay) Disconnect(string) error                           { return f.err }

func (f *fakeRelay) Rooms(context.Context) ([]core.RoomInfo, error) {
	return f.rooms, f.err
}

func (f *fakeRelay) Stats(context.Context) (core.Stats, error) {
	return f.stats, f.err
}

func newTestHandler(relay Relay) http.Handler {
	cfg := config.Default()
	logger := zerolog.Nop()
	return NewServer(relay, &cfg, &logger).Handler
}

func TestListRooms(t *testing.T) {
	relay := &fakeRelay{rooms: []core.RoomInfo{
		{Name: "attic", Members: 2},
		{Name: "lobby", Members: 1},
	}}

	resp := httptest.NewRecorder()
	newTestHandler(relay).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var rooms []core.RoomInfo
	if err := json.Unmarshal(resp.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "attic" || rooms[0].Members != 2 {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
}

func TestStats(t *testing.T) {
	relay := &fakeRelay{stats: core.Stats{Sessions: 3, Rooms: 2}}

	resp := httptest.NewRecorder()
	newTestHandler(relay).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var stats core.Stats
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Sessions != 3 || stats.Rooms != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestHandlersReportStoppedHub(t *testing.T) {
	relay := &fakeRelay{err: core.ErrHubStopped}
	handler := newTestHandler(relay)

	for _, path := range []string{"/api/rooms", "/api/stats"} {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))

		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, resp.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode error body: %v", err)
		}
		if body.Error == "" {
			t.Fatalf("%s: empty error message", path)
		}
	}
}
