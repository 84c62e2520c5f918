package runtime

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/errors"
)

type Set map[string]struct{}

// LeaveResult reports the outcome of removing a connection from its room.
type LeaveResult struct {
	Room       chat.RoomID
	DisplayID  string
	RoomClosed bool // true when the departure emptied the room
	Remaining  int
}

// RoomStore owns the room -> member-set mapping and enforces the capacity
// invariant: |members| <= capacity at all times, and a room key exists iff its
// member set is non-empty. Join, Leave and DeleteRoom are each one exclusive
// critical section; no I/O happens under the lock.
type RoomStore struct {
	mu       sync.Mutex
	rooms    map[chat.RoomID]Set
	capacity int
	sessions *SessionRegistry
}

func NewRoomStore(sessions *SessionRegistry, capacity int) *RoomStore {
	if capacity <= 0 {
		capacity = chat.DefaultRoomCapacity
	}
	return &RoomStore{
		rooms:    make(map[chat.RoomID]Set),
		capacity: capacity,
		sessions: sessions,
	}
}

// Join adds the connection to the room, creating the room on first join.
// A session already in a different room is first removed from it, atomically
// with the join. A join that would exceed capacity fails with ErrRoomFull and
// mutates nothing. The returned LeaveResult describes the implicit departure,
// nil when there was none.
func (s *RoomStore) Join(connectionID string, roomID chat.RoomID, displayID string) (chat.RoomSnapshot, *LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prior *LeaveResult
	if current, ok := s.sessions.RoomOf(connectionID); ok && current != roomID {
		res := s.leaveLocked(connectionID, current)
		prior = &res
	}

	members, exists := s.rooms[roomID]
	if exists {
		if _, already := members[connectionID]; !already && len(members) >= s.capacity {
			return chat.RoomSnapshot{}, prior, errors.ErrRoomFull
		}
	} else {
		members = make(Set)
		s.rooms[roomID] = members
	}

	members[connectionID] = struct{}{}
	s.sessions.Bind(connectionID, roomID, displayID)

	return s.snapshotLocked(roomID), prior, nil
}

// Leave removes the connection from its current room, deleting the room when
// it empties. A connection without a room yields ErrNotInRoom; calling Leave
// twice in a row reports ErrNotInRoom the second time, never a crash.
func (s *RoomStore) Leave(connectionID string) (LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.sessions.RoomOf(connectionID)
	if !ok {
		return LeaveResult{}, errors.ErrNotInRoom
	}
	return s.leaveLocked(connectionID, roomID), nil
}

// leaveLocked performs the membership removal. Caller holds s.mu.
func (s *RoomStore) leaveLocked(connectionID string, roomID chat.RoomID) LeaveResult {
	displayID, _ := s.sessions.DisplayOf(connectionID)
	s.sessions.ClearRoom(connectionID)

	members, ok := s.rooms[roomID]
	if !ok {
		return LeaveResult{Room: roomID, DisplayID: displayID, RoomClosed: true}
	}

	delete(members, connectionID)
	if len(members) == 0 {
		delete(s.rooms, roomID)
		return LeaveResult{Room: roomID, DisplayID: displayID, RoomClosed: true}
	}
	return LeaveResult{Room: roomID, DisplayID: displayID, Remaining: len(members)}
}

// DeleteRoom force-leaves every member, then removes the room entry.
// It returns the connection ids that were removed.
func (s *RoomStore) DeleteRoom(roomID chat.RoomID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[roomID]
	if !ok {
		return nil, errors.ErrRoomNotFound
	}

	removed := make([]string, 0, len(members))
	for connectionID := range members {
		removed = append(removed, connectionID)
		s.sessions.ClearRoom(connectionID)
	}
	delete(s.rooms, roomID)
	return removed, nil
}

// Members returns a stable copy of the member set, taken under the lock, so
// fan-out can iterate without holding room state hostage to delivery I/O.
func (s *RoomStore) Members(roomID chat.RoomID) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(members))
	for connectionID := range members {
		out = append(out, connectionID)
	}
	return out, true
}

// Snapshot projects one room. Fails with ErrRoomNotFound when absent.
func (s *RoomStore) Snapshot(roomID chat.RoomID) (chat.RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return chat.RoomSnapshot{}, errors.ErrRoomNotFound
	}
	return s.snapshotLocked(roomID), nil
}

// SnapshotAll projects every active room, ordered by room id for stable output.
func (s *RoomStore) SnapshotAll() []chat.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := lo.Keys(s.rooms)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return lo.Map(ids, func(roomID chat.RoomID, _ int) chat.RoomSnapshot {
		return s.snapshotLocked(roomID)
	})
}

// snapshotLocked builds a RoomSnapshot. Caller holds s.mu.
func (s *RoomStore) snapshotLocked(roomID chat.RoomID) chat.RoomSnapshot {
	members := s.rooms[roomID]
	participants := lo.FilterMap(lo.Keys(members), func(connectionID string, _ int) (string, bool) {
		return s.sessions.DisplayOf(connectionID)
	})
	return chat.RoomSnapshot{
		RoomID:           roomID,
		Participants:     participants,
		ParticipantCount: len(members),
		IsFull:           len(members) >= s.capacity,
		Timestamp:        time.Now().UTC(),
	}
}
