package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
)

func TestSessionRegistry_BindAndLookup(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	// Given a bound session
	registry.Bind("conn-1", "lobby", "alice")

	// Then both lookups resolve
	room, ok := registry.RoomOf("conn-1")
	req.True(ok)
	req.Equal(chat.RoomID("lobby"), room)

	display, ok := registry.DisplayOf("conn-1")
	req.True(ok)
	req.Equal("alice", display)
}

func TestSessionRegistry_RebindOverwrites(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	// Given a session bound twice
	registry.Bind("conn-1", "lobby", "alice")
	registry.Bind("conn-1", "games", "alice")

	// Then the latest room wins
	room, ok := registry.RoomOf("conn-1")
	req.True(ok)
	req.Equal(chat.RoomID("games"), room)
}

func TestSessionRegistry_Unbind(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	registry.Bind("conn-1", "lobby", "alice")

	// When the session is unbound
	room, inRoom := registry.Unbind("conn-1")

	// Then the occupied room is reported and the record is gone
	req.True(inRoom)
	req.Equal(chat.RoomID("lobby"), room)

	_, ok := registry.RoomOf("conn-1")
	req.False(ok)
	_, ok = registry.DisplayOf("conn-1")
	req.False(ok)
}

func TestSessionRegistry_UnbindUnknownIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	// When an unknown connection is unbound
	room, inRoom := registry.Unbind("ghost")

	// Then nothing is reported and nothing panics
	req.False(inRoom)
	req.Equal(chat.RoomID(""), room)
}

func TestSessionRegistry_ClearRoomKeepsDisplay(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	registry.Bind("conn-1", "lobby", "alice")

	// When the room is cleared
	registry.ClearRoom("conn-1")

	// Then the session keeps its display identity but occupies no room
	_, ok := registry.RoomOf("conn-1")
	req.False(ok)

	display, ok := registry.DisplayOf("conn-1")
	req.True(ok)
	req.Equal("alice", display)
}
