package core

import "sort"

// RoomInfo is a point-in-time summary of one room.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// RoomIndex maps room names to member session IDs. A room exists only while
// it has members. RoomIndex is not safe for concurrent use; the hub serializes access.
type RoomIndex struct {
	rooms map[string]map[string]struct{}
}

// NewRoomIndex constructs an index with no rooms.
func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[string]map[string]struct{})}
}

// Join adds id to room, creating the room if needed. Returns true if newly added.
func (x *RoomIndex) Join(room, id string) bool {
	members, ok := x.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		x.rooms[room] = members
	}
	if _, exists := members[id]; exists {
		return false
	}
	members[id] = struct{}{}
	return true
}

// Leave removes id from room and deletes the room once it is empty.
// Returns true if the id was a member.
func (x *RoomIndex) Leave(room, id string) bool {
	members, ok := x.rooms[room]
	if !ok {
		return false
	}
	_, exists := members[id]
	delete(members, id)
	if len(members) == 0 {
		delete(x.rooms, room)
	}
	return exists
}

// MembersOf returns a sorted snapshot of the room's member IDs.
func (x *RoomIndex) MembersOf(room string) []string {
	members := x.rooms[room]
	if len(members) == 0 {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has reports whether id is a member of room.
func (x *RoomIndex) Has(room, id string) bool {
	_, ok := x.rooms[room][id]
	return ok
}

// SweepEmpty deletes every room with no members and returns how many were removed.
func (x *RoomIndex) SweepEmpty() int {
	removed := 0
	for name, members := range x.rooms {
		if len(members) == 0 {
			delete(x.rooms, name)
			removed++
		}
	}
	return removed
}

// Len returns the number of rooms.
func (x *RoomIndex) Len() int {
	return len(x.rooms)
}

// Rooms returns a summary of every room sorted by name.
func (x *RoomIndex) Rooms() []RoomInfo {
	out := make([]RoomInfo, 0, len(x.rooms))
	for name, members := range x.rooms {
		out = append(out, RoomInfo{Name: name, Members: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
