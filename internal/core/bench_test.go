package core

import (
	"context"
	"encoding/json"
	"testing"
)

type discardConn struct{}

func (discardConn) Send([]byte) error { return nil }
func (discardConn) Close()            {}
func (discardConn) Terminate()        {}
func (discardConn) Ping(func())       {}
func (discardConn) Open() bool        { return true }

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(DefaultConfig())
	go hub.Run(ctx)

	join, _ := json.Marshal(map[string]any{"type": "join", "room": "bench"})

	sender, err := hub.Connect(ctx, discardConn{})
	if err != nil {
		b.Fatalf("connect: %v", err)
	}
	_ = hub.Deliver(sender, join)

	for r := 0; r < recipients; r++ {
		id, err := hub.Connect(ctx, discardConn{})
		if err != nil {
			b.Fatalf("connect: %v", err)
		}
		_ = hub.Deliver(id, join)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = hub.do(ctx, func() {
			hub.broadcast("bench", map[string]any{"type": "chat", "text": "payload"}, sender)
		})
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
