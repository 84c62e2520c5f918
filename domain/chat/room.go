package chat

import "time"

type RoomID string

// DefaultRoomCapacity bounds membership when no explicit capacity is configured.
const DefaultRoomCapacity = 5

// RoomSnapshot is a read-only projection of one room at a point in time.
// Participant order carries no meaning.
type RoomSnapshot struct {
	RoomID           RoomID    `json:"room_id"`
	Participants     []string  `json:"participants"`
	ParticipantCount int       `json:"participant_count"`
	IsFull           bool      `json:"is_full"`
	Timestamp        time.Time `json:"timestamp"`
}
