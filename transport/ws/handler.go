package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
)

const replyTimeout = 2 * time.Second

// Handler upgrades HTTP requests to websocket sessions and pumps decoded
// client events into the hub. One goroutine reads, one writes; the hub does
// the rest.
type Handler struct {
	hub        contract.Hub
	log        *slog.Logger
	validate   *validator.Validate
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, hub contract.Hub, bufferSize int) *Handler {
	return &Handler{
		hub:        hub,
		log:        log,
		validate:   validator.New(),
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The chat surface is open; origin policy is enforced upstream.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := newConn(h.log, socket, h.bufferSize)
	go conn.writePump()
	h.hub.OnConnect(conn)

	defer func() {
		h.hub.OnDisconnect(conn.ID())
		_ = conn.Close()
	}()

	for {
		var evt chat.ClientEvent
		if err := socket.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("socket read failed", "connection_id", conn.ID(), "error", err)
			}
			return
		}
		h.dispatch(conn, evt)
	}
}

func (h *Handler) dispatch(conn *Conn, evt chat.ClientEvent) {
	if err := h.validate.Struct(evt); err != nil {
		h.reply(conn, "invalid event: check type, room_id and content")
		return
	}

	switch evt.Type {
	case chat.EventJoin:
		snap, err := h.hub.OnJoinRequest(conn.ID(), evt.RoomID, evt.UserID)
		if err != nil {
			h.reply(conn, err.Error())
			return
		}
		h.replyWithRoomInfo(conn, fmt.Sprintf("You joined room %s", snap.RoomID), &snap)
	case chat.EventLeave:
		if err := h.hub.OnLeaveRequest(conn.ID()); err != nil {
			h.reply(conn, err.Error())
		}
	case chat.EventChat:
		if err := h.hub.OnChatMessage(conn.ID(), evt.Content); err != nil {
			h.reply(conn, err.Error())
		}
	}
}

// reply sends a direct system notice to a single client, outside any room
// fan-out. Failures only mean the client is already gone.
func (h *Handler) reply(conn *Conn, content string) {
	h.replyWithRoomInfo(conn, content, nil)
}

func (h *Handler) replyWithRoomInfo(conn *Conn, content string, info *chat.RoomSnapshot) {
	var room chat.RoomID
	if info != nil {
		room = info.RoomID
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	if err := conn.Send(ctx, chat.NewSystemMessage(room, content, info)); err != nil {
		h.log.Debug("direct reply dropped", "connection_id", conn.ID(), "error", err)
	}
}
