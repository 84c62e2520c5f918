// Package chat contains core concepts of the collaborative chat system.
// This file defines broadcast messages and related rules.
// Messages are immutable, ephemeral and validated by the domain.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the closed set of broadcast payloads.
type Kind string

const (
	KindSystem  Kind = "system"
	KindChat    Kind = "chat"
	KindAIChunk Kind = "ai_chunk"
	KindTyping  Kind = "typing"
)

// Reserved sender identities for non-user messages.
const (
	SenderSystem = "System"
	SenderAI     = "ai"
)

// Message is one broadcast payload. It only exists for the duration of a
// fan-out call and is never persisted.
type Message struct {
	ID        uuid.UUID     `json:"message_id"`
	Kind      Kind          `json:"type"`
	Room      RoomID        `json:"room_id"`
	SenderID  string        `json:"sender_id,omitempty"`
	Content   string        `json:"content,omitempty"`
	IsTyping  bool          `json:"is_typing,omitempty"`
	RoomInfo  *RoomSnapshot `json:"room_info,omitempty"`
	CreatedAt time.Time     `json:"timestamp"`
}

func NewSystemMessage(room RoomID, content string, info *RoomSnapshot) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindSystem,
		Room:      room,
		SenderID:  SenderSystem,
		Content:   content,
		RoomInfo:  info,
		CreatedAt: time.Now().UTC(),
	}
}

func NewChatMessage(room RoomID, senderID, content string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindChat,
		Room:      room,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func NewAIChunk(room RoomID, chunk string) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindAIChunk,
		Room:      room,
		SenderID:  SenderAI,
		Content:   chunk,
		CreatedAt: time.Now().UTC(),
	}
}

func NewTypingMessage(room RoomID, isTyping bool) Message {
	return Message{
		ID:        uuid.New(),
		Kind:      KindTyping,
		Room:      room,
		SenderID:  SenderAI,
		IsTyping:  isTyping,
		CreatedAt: time.Now().UTC(),
	}
}
