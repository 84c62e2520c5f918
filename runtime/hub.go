// Package runtime implements the room/session coordination and
// broadcast-streaming core. It orchestrates membership, fan-out and AI
// response relaying without containing transport or serialization logic.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/errors"
	"github.com/Qwertuhh/leanaura-alpha/moderation"
	"github.com/Qwertuhh/leanaura-alpha/observability"
)

// Ensure *RoomHub implements the contract.Hub interface at compile time.
var _ contract.Hub = (*RoomHub)(nil)

// RoomHub composes the session registry, room store, broadcaster and AI
// stream coordinator behind the single external-facing contract. One hub
// instance is the process-wide authority over room state; it is constructed
// explicitly and passed by reference, never ambient.
type RoomHub struct {
	log       *slog.Logger
	sessions  *SessionRegistry
	store     *RoomStore
	dir       *ConnectionDirectory
	broadcast *Broadcaster
	streams   *AIStreamCoordinator
	moderator *moderation.Moderator
	metrics   *observability.Metrics
}

func NewRoomHub(log *slog.Logger, sessions *SessionRegistry, store *RoomStore,
	dir *ConnectionDirectory, broadcast *Broadcaster, streams *AIStreamCoordinator,
	moderator *moderation.Moderator, metrics *observability.Metrics) *RoomHub {
	return &RoomHub{
		log:       log,
		sessions:  sessions,
		store:     store,
		dir:       dir,
		broadcast: broadcast,
		streams:   streams,
		moderator: moderator,
		metrics:   metrics,
	}
}

// OnConnect registers a freshly accepted connection. The session joins no
// room yet; it only becomes visible to others on its first join.
func (h *RoomHub) OnConnect(conn contract.Connection) {
	h.dir.Add(conn)
	h.metrics.ConnectionOpened()
	h.log.Info("client connected", "connection_id", conn.ID())
}

// OnDisconnect destroys the session and leaves its room, notifying the
// vacated room if it still exists.
func (h *RoomHub) OnDisconnect(connectionID string) {
	h.dir.Remove(connectionID)
	h.metrics.ConnectionClosed()

	res, err := h.store.Leave(connectionID)
	h.sessions.Unbind(connectionID)
	h.log.Info("client disconnected", "connection_id", connectionID)

	if err != nil || res.RoomClosed {
		return
	}
	h.notifyDeparture(res)
}

// OnJoinRequest places the connection into roomID, creating the room on
// first join. An empty displayID gets an auto-generated anonymous identity.
// When the session was in another room, that room is left implicitly and
// notified of the departure.
func (h *RoomHub) OnJoinRequest(connectionID, roomID, displayID string) (chat.RoomSnapshot, error) {
	if displayID == "" {
		displayID = anonDisplayID()
	}

	snap, prior, err := h.store.Join(connectionID, chat.RoomID(roomID), displayID)
	if prior != nil && !prior.RoomClosed {
		h.notifyDeparture(*prior)
	}
	if err != nil {
		return chat.RoomSnapshot{}, err
	}

	h.log.Info("client joined room",
		"connection_id", connectionID,
		"room_id", roomID,
		"display_id", displayID)

	notice := fmt.Sprintf("User %s joined the room", displayID)
	_ = h.broadcast.Send(snap.RoomID, chat.NewSystemMessage(snap.RoomID, notice, &snap), "")
	return snap, nil
}

// OnLeaveRequest removes the connection from its current room while keeping
// the connection itself alive. ErrNotInRoom when there is nothing to leave.
func (h *RoomHub) OnLeaveRequest(connectionID string) error {
	res, err := h.store.Leave(connectionID)
	if err != nil {
		return err
	}
	if !res.RoomClosed {
		h.notifyDeparture(res)
	}
	return nil
}

// OnChatMessage validates that the sender occupies a room, censors the
// content, broadcasts the chat message to every member including the sender
// (the server echo is the single source of truth), then spawns the AI
// response stream for this trigger.
func (h *RoomHub) OnChatMessage(connectionID, content string) error {
	roomID, ok := h.sessions.RoomOf(connectionID)
	if !ok {
		return errors.ErrNotInRoom
	}
	displayID, _ := h.sessions.DisplayOf(connectionID)

	censored, foundWords := h.moderator.Censor(content)
	if len(foundWords) > 0 {
		h.metrics.IncrCensored()
		h.log.Warn("censored chat content",
			"room_id", roomID,
			"display_id", displayID,
			"lang", moderation.Language(content),
			"words", len(foundWords))
	}

	msg := chat.NewChatMessage(roomID, displayID, censored)
	if err := h.broadcast.Send(roomID, msg, ""); err != nil {
		return err
	}

	go h.streams.Respond(context.Background(), roomID, censored)
	return nil
}

// DeleteRoom is administrative: the room gets a closing notice, every member
// is force-removed, and each removed connection is told individually that its
// room ceased to exist. Returns how many members were removed.
func (h *RoomHub) DeleteRoom(roomID chat.RoomID) (int, error) {
	removed, err := h.store.DeleteRoom(roomID)
	if err != nil {
		return 0, err
	}

	// The room entry is already gone, so the regular broadcast path cannot
	// reach the evicted members; each survivor is told directly.
	closing := fmt.Sprintf("Room %s has been deleted", roomID)
	for _, connectionID := range removed {
		conn, ok := h.dir.Get(connectionID)
		if !ok {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), h.broadcast.deliveryTimeout)
		_ = conn.Send(ctx, chat.NewSystemMessage(roomID, closing, nil))
		cancel()
	}

	h.log.Info("room deleted", "room_id", roomID, "members_removed", len(removed))
	return len(removed), nil
}

// ListRooms projects every active room.
func (h *RoomHub) ListRooms() []chat.RoomSnapshot {
	return h.store.SnapshotAll()
}

// GetRoom projects one room, ErrRoomNotFound when absent.
func (h *RoomHub) GetRoom(roomID chat.RoomID) (chat.RoomSnapshot, error) {
	return h.store.Snapshot(roomID)
}

// Stats exposes the hub's runtime counters for the inspection endpoint.
func (h *RoomHub) Stats() observability.Stats {
	return h.metrics.Snapshot()
}

func (h *RoomHub) notifyDeparture(res LeaveResult) {
	snap, err := h.store.Snapshot(res.Room)
	if err != nil {
		// Room vanished between the leave and the notice; nothing to tell.
		return
	}
	notice := fmt.Sprintf("User %s left the room", res.DisplayID)
	_ = h.broadcast.Send(res.Room, chat.NewSystemMessage(res.Room, notice, &snap), "")
}

// anonDisplayID builds the auto-generated identity for users who do not pick
// a name, e.g. "anon-9f3c21ab".
func anonDisplayID() string {
	return "anon-" + uuid.NewString()[:8]
}
