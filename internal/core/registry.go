package core

import (
	"sort"

	"github.com/benbjohnson/clock"

	"github.com/vovakirdan/presence-relay/internal/utils"
)

// Registry maps session IDs to session state. It is the single issuer of IDs.
// Registry is not safe for concurrent use; the hub serializes access.
type Registry struct {
	clock    clock.Clock
	newID    func() string
	sessions map[string]*Session
}

// NewRegistry creates an empty registry reading time from clk.
func NewRegistry(clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	return &Registry{
		clock:    clk,
		newID:    utils.NewID,
		sessions: make(map[string]*Session),
	}
}

// Create inserts a default-valued session bound to conn and returns its new ID.
func (r *Registry) Create(conn Conn) string {
	id := r.newID()
	for {
		if _, taken := r.sessions[id]; !taken && id != "" {
			break
		}
		id = r.newID()
	}
	r.sessions[id] = newSession(id, conn, r.clock.Now())
	return id
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Mutate applies fn to the session for id. Returns false if id is unknown.
func (r *Registry) Mutate(id string, fn func(*Session)) bool {
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// Remove deletes the session for id. Removing an unknown id is a no-op that returns false.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// IDs returns a sorted snapshot of live session IDs.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
