package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/errors"
	"github.com/Qwertuhh/leanaura-alpha/observability"
)

// Broadcaster fans one message out to every member of a room, with optional
// sender exclusion and best-effort delivery.
//
// It provides no guarantees regarding durability or retries: a recipient
// whose connection is broken is evicted from the room and the fan-out keeps
// going. Messages issued from a single caller goroutine reach each surviving
// recipient in issuance order, because Connection.Send enqueues without
// blocking and per-connection writers drain in order.
//
// Broadcaster is safe for concurrent use by multiple goroutines.
type Broadcaster struct {
	store           *RoomStore
	dir             *ConnectionDirectory
	log             *slog.Logger
	metrics         *observability.Metrics
	deliveryTimeout time.Duration
}

func NewBroadcaster(log *slog.Logger, store *RoomStore, dir *ConnectionDirectory,
	metrics *observability.Metrics, deliveryTimeout time.Duration) *Broadcaster {
	return &Broadcaster{
		store:           store,
		dir:             dir,
		log:             log,
		metrics:         metrics,
		deliveryTimeout: deliveryTimeout,
	}
}

// Send delivers msg to every member of roomID except excludeConnectionID
// (empty string excludes no one). It fails with ErrRoomNotFound only when the
// room is absent at call time; a room emptying mid-call is a valid no-op.
// A failed recipient never aborts delivery to the rest of the room.
func (b *Broadcaster) Send(roomID chat.RoomID, msg chat.Message, excludeConnectionID string) error {
	members, ok := b.store.Members(roomID)
	if !ok {
		return errors.ErrRoomNotFound
	}

	b.metrics.IncrBroadcast()

	for _, connectionID := range members {
		if connectionID == excludeConnectionID {
			continue
		}
		conn, ok := b.dir.Get(connectionID)
		if !ok {
			// Member without a live connection (e.g. joined via the REST
			// demo endpoint). Nothing to deliver.
			continue
		}
		if err := b.deliver(conn, msg); err != nil {
			b.metrics.IncrDeliveryFailure()
			b.log.Warn("delivery failed, evicting recipient",
				"connection_id", connectionID,
				"room_id", roomID,
				"error", err)
			go b.evict(connectionID, conn)
		}
	}
	return nil
}

func (b *Broadcaster) deliver(conn contract.Connection, msg chat.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.deliveryTimeout)
	defer cancel()
	return conn.Send(ctx, msg)
}

// evict performs the asynchronous membership cleanup for an unreachable
// recipient: close the connection, drop it from the directory, and remove it
// from whatever room it occupies. The DeliveryError itself is never surfaced
// to any user.
func (b *Broadcaster) evict(connectionID string, conn contract.Connection) {
	_ = conn.Close()
	b.dir.Remove(connectionID)
	if _, err := b.store.Leave(connectionID); err != nil {
		// Already gone; eviction is idempotent.
		b.log.Debug("evicted connection had no room", "connection_id", connectionID)
	}
}
