package core

import (
	"encoding/json"
)

// broadcast serializes payload once and sends it to every member of room
// except exclude. Members whose connection is gone are terminated and queued
// for departure after the current event; the member set is never mutated
// mid-pass except to drop IDs the registry no longer knows.
func (h *Hub) broadcast(room string, payload any, exclude string) int {
	members := h.rooms.MembersOf(room)
	if len(members) == 0 {
		return 0
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("marshal broadcast payload")
		return 0
	}

	delivered := 0
	for _, id := range members {
		if id == exclude {
			continue
		}
		s, ok := h.registry.Get(id)
		if !ok {
			h.rooms.Leave(room, id)
			continue
		}
		if h.deliver(s, data) {
			delivered++
		}
	}
	return delivered
}

// sendTo delivers payload to a single session.
func (h *Hub) sendTo(s *Session, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", s.ID).Msg("marshal payload")
		return false
	}
	return h.deliver(s, data)
}

func (h *Hub) deliver(s *Session, data []byte) bool {
	if _, dead := h.reaped[s.ID]; dead {
		return false
	}
	if !s.Conn.Open() {
		h.reap(s)
		return false
	}
	if err := s.Conn.Send(data); err != nil {
		h.log.Debug().Err(err).Str("session_id", s.ID).Msg("send failed, dropping session")
		h.reap(s)
		return false
	}
	return true
}

// reap terminates the session's connection and queues its departure.
func (h *Hub) reap(s *Session) {
	if _, ok := h.reaped[s.ID]; ok {
		return
	}
	s.Conn.Terminate()
	h.reaped[s.ID] = struct{}{}
	h.reapQueue = append(h.reapQueue, s.ID)
}

// reconcile runs the departure path for every reaped session. Departures can
// reap further sessions, so it loops until the queue is empty.
func (h *Hub) reconcile() {
	for len(h.reapQueue) > 0 {
		id := h.reapQueue[0]
		h.reapQueue = h.reapQueue[1:]
		delete(h.reaped, id)
		h.depart(id)
	}
}
