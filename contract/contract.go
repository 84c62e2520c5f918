//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Connection is the transport-owned delivery capability for one client.
// Send must not block behind a slow receiver: implementations queue the
// message or fail fast, so a broken connection degrades to a delivery error
// and never stalls a room-wide fan-out.
type Connection interface {
	ID() string
	Send(ctx context.Context, msg chat.Message) error
	Close() error
}

// StreamingResponder produces a lazy, finite, non-restartable sequence of
// text fragments for a prompt. Each fragment is handed to onFragment as soon
// as it is produced. A non-nil return means the stream failed or was
// interrupted; fragments already delivered stay delivered.
type StreamingResponder interface {
	Stream(ctx context.Context, prompt string, onFragment func(fragment string) error) error
}

// Hub is the external-facing contract of the room coordination core.
// Every operation returns a typed outcome; no panics cross this boundary.
type Hub interface {
	OnConnect(conn Connection)
	OnDisconnect(connectionID string)
	OnJoinRequest(connectionID, roomID, displayID string) (chat.RoomSnapshot, error)
	OnLeaveRequest(connectionID string) error
	OnChatMessage(connectionID, content string) error
	DeleteRoom(roomID chat.RoomID) (int, error)
	ListRooms() []chat.RoomSnapshot
	GetRoom(roomID chat.RoomID) (chat.RoomSnapshot, error)
}
