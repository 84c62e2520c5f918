package runtime

import (
	"context"
	"log/slog"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/observability"
)

// fallbackNotice is what the room sees when a responder stream fails.
// Error internals stay in the logs.
const fallbackNotice = "The assistant could not complete its response."

// AIStreamCoordinator relays one streamed AI response per triggering chat
// message: a typing(true) signal, each fragment as an individual ai_chunk,
// then exactly one typing(false) whether the stream ends or fails.
//
// Concurrent chat messages in the same room each drive an independent stream;
// their chunks may interleave. That interleaving is accepted behavior, not
// serialized away. No room-state lock is held while awaiting a fragment.
type AIStreamCoordinator struct {
	responder   contract.StreamingResponder
	broadcaster *Broadcaster
	log         *slog.Logger
	metrics     *observability.Metrics
}

func NewAIStreamCoordinator(log *slog.Logger, responder contract.StreamingResponder,
	broadcaster *Broadcaster, metrics *observability.Metrics) *AIStreamCoordinator {
	return &AIStreamCoordinator{
		responder:   responder,
		broadcaster: broadcaster,
		log:         log,
		metrics:     metrics,
	}
}

// Respond blocks until the stream for prompt finishes; callers run it in its
// own goroutine. If the room empties mid-stream, chunk broadcasts become
// no-ops and the responder is left to finish on its own.
func (c *AIStreamCoordinator) Respond(ctx context.Context, roomID chat.RoomID, prompt string) {
	c.metrics.IncrStreamStarted()

	// The whole room sees the AI start working, sender included.
	_ = c.broadcaster.Send(roomID, chat.NewTypingMessage(roomID, true), "")

	err := c.responder.Stream(ctx, prompt, func(fragment string) error {
		c.metrics.IncrFragmentRelayed()
		// RoomNotFound here means the room emptied mid-stream; keep
		// draining the responder, deliveries are no-ops from now on.
		_ = c.broadcaster.Send(roomID, chat.NewAIChunk(roomID, fragment), "")
		return nil
	})
	if err != nil {
		c.metrics.IncrStreamFailed()
		c.log.Error("responder stream failed",
			"room_id", roomID,
			"error", err)
		_ = c.broadcaster.Send(roomID, chat.NewSystemMessage(roomID, fallbackNotice, nil), "")
	}

	// Exactly one closing signal per trigger, success or failure: the room
	// must never be left with a stuck typing indicator.
	_ = c.broadcaster.Send(roomID, chat.NewTypingMessage(roomID, false), "")
}
