package core

// probe is the heartbeat tick: sessions silent for longer than the stale
// threshold are terminated, the rest get a ping.
func (h *Hub) probe() {
	now := h.clock.Now()
	for _, id := range h.registry.IDs() {
		s, ok := h.registry.Get(id)
		if !ok {
			continue
		}
		if now.Sub(s.LastHeartbeatAt) > h.cfg.StaleThreshold {
			s.Liveness = LivenessStale
			h.log.Info().
				Str("session_id", id).
				Str("room", s.Room).
				Time("last_heartbeat", s.LastHeartbeatAt).
				Msg("evicting stale session")
			s.Conn.Terminate()
			h.depart(id)
			continue
		}
		s.Liveness = LivenessProbing
		s.Conn.Ping(h.pong(id))
	}
}

func (h *Hub) pong(id string) func() {
	return func() { _ = h.Heartbeat(id) }
}

func (h *Hub) markAlive(id string) {
	s, ok := h.registry.Get(id)
	if !ok {
		return
	}
	touch(&s.LastHeartbeatAt, h.clock.Now())
	s.Liveness = LivenessAlive
}

func (h *Hub) sweep() {
	if n := h.rooms.SweepEmpty(); n > 0 {
		h.log.Warn().Int("rooms", n).Msg("swept empty rooms")
	}
}
