package chat

// ClientEventType discriminates inbound realtime events.
type ClientEventType string

const (
	EventJoin  ClientEventType = "join"
	EventLeave ClientEventType = "leave"
	EventChat  ClientEventType = "chat"
)

// ClientEvent is one deserialized message from a connected client.
// It is validated at the transport boundary before reaching the hub.
type ClientEvent struct {
	Type    ClientEventType `json:"type" validate:"required,oneof=join leave chat"`
	RoomID  string          `json:"room_id" validate:"required_if=Type join,omitempty,max=64"`
	UserID  string          `json:"user_id" validate:"omitempty,max=64"`
	Content string          `json:"content" validate:"required_if=Type chat,omitempty,max=4096"`
}
