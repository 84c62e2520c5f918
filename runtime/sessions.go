package runtime

import (
	"sync"

	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
)

// SessionRegistry owns the connection -> (room, display identity) bookkeeping.
// It is the single writer of session state: records are created on bind,
// overwritten on rebind, and destroyed on unbind. All methods are safe for
// concurrent use.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session // connectionID -> session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]chat.Session),
	}
}

// Bind records or overwrites the session's room and display identity.
// Duplicate display identities within a room are allowed.
func (r *SessionRegistry) Bind(connectionID string, roomID chat.RoomID, displayID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connectionID] = chat.Session{
		ConnectionID: connectionID,
		DisplayID:    displayID,
		Room:         roomID,
	}
}

// Unbind removes the session record and returns the room it occupied.
// Unbinding an unknown connection is a no-op, never an error.
func (r *SessionRegistry) Unbind(connectionID string) (chat.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return "", false
	}
	delete(r.sessions, connectionID)
	return session.Room, session.InRoom()
}

// ClearRoom detaches the session from its room while keeping the display
// identity, so a user who left a room keeps their name until disconnect.
func (r *SessionRegistry) ClearRoom(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return
	}
	session.Room = ""
	r.sessions[connectionID] = session
}

// RoomOf returns the room the connection currently occupies.
func (r *SessionRegistry) RoomOf(connectionID string) (chat.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connectionID]
	if !ok || !session.InRoom() {
		return "", false
	}
	return session.Room, true
}

// DisplayOf returns the display identity the connection presents.
func (r *SessionRegistry) DisplayOf(connectionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return "", false
	}
	return session.DisplayID, true
}
