package core

import (
	"github.com/vovakirdan/presence-relay/internal/proto"
)

func (h *Hub) connect(conn Conn) string {
	id := h.registry.Create(conn)
	s, _ := h.registry.Get(id)
	h.sendTo(s, proto.NewID(id))
	h.log.Debug().Str("session_id", id).Int("sessions", h.registry.Len()).Msg("session connected")
	return id
}

// handleFrame validates and applies one inbound frame. A panic while handling
// it is reported to the sender only.
func (h *Hub) handleFrame(f frame) {
	s, ok := h.registry.Get(f.id)
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Str("session_id", f.id).Interface("panic", r).Msg("message handler failed")
			h.notifyError(s)
		}
	}()

	now := h.clock.Now()
	cmd, ok := h.validator.Validate(s, f.data, now)
	if !ok {
		return
	}
	touch(&s.LastActivityAt, now)

	switch cmd.Kind {
	case CommandJoin:
		h.join(s, cmd)
	case CommandPosition:
		h.position(s, cmd)
	case CommandChat:
		h.chat(s, cmd)
	case CommandLeave:
		s.Conn.Close()
		h.depart(s.ID)
	}
}

func (h *Hub) notifyError(s *Session) {
	defer func() {
		if r := recover(); r != nil {
			h.reap(s)
		}
	}()
	h.sendTo(s, proto.NewError(internalErrorMessage))
}

func (h *Hub) join(s *Session, cmd *Command) {
	if s.Room != "" && s.Room != cmd.Room {
		h.leaveRoom(s)
	}

	s.Name = cmd.Name
	cmd.apply(s)
	s.Room = cmd.Room
	h.rooms.Join(cmd.Room, s.ID)

	roster := make([]proto.Player, 0)
	for _, id := range h.rooms.MembersOf(cmd.Room) {
		if id == s.ID {
			continue
		}
		if peer, ok := h.registry.Get(id); ok {
			roster = append(roster, peer.Player())
		}
	}

	h.sendTo(s, proto.NewPlayers(roster))
	h.broadcast(cmd.Room, proto.NewPlayerJoined(s.Player()), s.ID)
	h.sendTo(s, proto.NewJoined(cmd.Room))

	h.log.Debug().Str("session_id", s.ID).Str("room", cmd.Room).Str("name", s.Name).Msg("session joined")
}

func (h *Hub) position(s *Session, cmd *Command) {
	if s.Room == "" {
		return
	}
	cmd.apply(s)
	h.broadcast(s.Room, proto.NewPos(s.Player()), s.ID)
}

func (h *Hub) chat(s *Session, cmd *Command) {
	msg := proto.NewChat(s.ID, cmd.Name, cmd.Text)
	if s.Room == "" {
		h.sendTo(s, msg)
		return
	}
	h.broadcast(s.Room, msg, "")
}

// leaveRoom unbinds s from its room and tells the remaining members.
func (h *Hub) leaveRoom(s *Session) {
	room := s.Room
	s.Room = ""
	h.rooms.Leave(room, s.ID)
	h.broadcast(room, proto.NewPlayerLeft(s.ID), s.ID)
}

// depart removes a session for good. Unknown IDs are ignored, which makes
// close, leave, send failure and eviction safe to race.
func (h *Hub) depart(id string) {
	s, ok := h.registry.Get(id)
	if !ok {
		return
	}
	h.registry.Remove(id)
	if s.Room != "" {
		h.leaveRoom(s)
	}
	h.log.Debug().Str("session_id", id).Int("sessions", h.registry.Len()).Msg("session departed")
}
