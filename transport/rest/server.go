// Package rest exposes the read-only inspection and administrative endpoints
// of the chat core: listing rooms, fetching one room, the demo join, room
// deletion and runtime stats. None of it is realtime.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/Qwertuhh/leanaura-alpha/contract"
	"github.com/Qwertuhh/leanaura-alpha/domain/chat"
	"github.com/Qwertuhh/leanaura-alpha/errors"
	"github.com/Qwertuhh/leanaura-alpha/observability"
)

type Server struct {
	hub      contract.Hub
	stats    func() observability.Stats
	log      *slog.Logger
	validate *validator.Validate
}

func NewServer(log *slog.Logger, hub contract.Hub, stats func() observability.Stats) *Server {
	return &Server{
		hub:      hub,
		stats:    stats,
		log:      log,
		validate: validator.New(),
	}
}

// Router wires the admin routes. The caller mounts it next to the websocket
// endpoint on the same listener.
func (s *Server) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/rooms", s.listRooms)
	router.GET("/rooms/:room_id", s.getRoom)
	router.POST("/rooms/join", s.joinRoom)
	router.DELETE("/rooms/:room_id", s.deleteRoom)
	router.GET("/stats", s.statsHandler)
	return router
}

func (s *Server) listRooms(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, s.hub.ListRooms())
}

func (s *Server) getRoom(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	snap, err := s.hub.GetRoom(chat.RoomID(ps.ByName("room_id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

type joinRequest struct {
	RoomID string `json:"room_id" validate:"required,max=64"`
	UserID string `json:"user_id" validate:"omitempty,max=64"`
}

// joinRoom is kept for demonstration parity with the realtime join: the
// created membership has a synthetic connection identity and no delivery
// sink, so broadcasts simply skip it.
func (s *Server) joinRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room_id is required"})
		return
	}

	snap, err := s.hub.OnJoinRequest(uuid.NewString(), req.RoomID, req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteRoom(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	removed, err := s.hub.DeleteRoom(chat.RoomID(ps.ByName("room_id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"members_removed": removed,
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, s.stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
}
