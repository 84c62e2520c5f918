// Package chat contains core concepts of the collaborative chat system.
// This file defines Session entities and related invariants.
// No runtime, network, or UI logic should be added here.
package chat

// Session is one logical connection: its opaque connection identity, the
// display identity it presents, and the room it currently occupies.
// A session belongs to at most one room; Room is empty when none is joined.
type Session struct {
	ConnectionID string
	DisplayID    string
	Room         RoomID
}

// InRoom reports whether the session currently occupies a room.
func (s Session) InRoom() bool {
	return s.Room != ""
}
