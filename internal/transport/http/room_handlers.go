package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/store"
)

const maxEventsLimit = 500

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	lobby   *lobby.Manager
	journal store.Journal
	log     *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(manager *lobby.Manager, journal store.Journal, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		lobby:   manager,
		journal: journal,
		log:     logger,
	}
}

// ListRooms returns every live room.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	snaps := h.lobby.Snapshots()
	response := make([]RoomResponse, 0, len(snaps))
	for _, snap := range snaps {
		response = append(response, roomResponse(snap))
	}
	c.JSON(http.StatusOK, response)
}

// CreateRoom creates a room owned by the caller and joins the caller into it.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	uid := callerID(c)

	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}

	room := h.lobby.Create(lobby.OwnedBy(uid), cfg)
	if err := room.Join(uid); err != nil {
		h.log.Warn().Err(err).Int64("room_id", room.ID()).Str("user_id", uid).Msg("creator could not join room")
		writeLobbyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, roomResponse(room.Snapshot()))
}

// QueueRoom puts the caller into a matching matchmaking room.
// POST /api/rooms/queues
func (h *RoomHandlers) QueueRoom(c *gin.Context) {
	uid := callerID(c)

	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}

	room, err := h.lobby.Queue(uid, cfg)
	if err != nil {
		writeLobbyError(c, err)
		return
	}

	c.JSON(http.StatusOK, roomResponse(room.Snapshot()))
}

// GetRoom returns a single room.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, roomResponse(room.Snapshot()))
}

// UpdateRoom merges the body into the room properties. Owner only.
// PUT /api/rooms/:id
func (h *RoomHandlers) UpdateRoom(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	patch, ok := h.bindConfig(c)
	if !ok {
		return
	}

	if err := room.Update(callerID(c), patch); err != nil {
		writeLobbyError(c, err)
		return
	}

	c.JSON(http.StatusOK, roomResponse(room.Snapshot()))
}

// RemoveRoom destroys a room.
// DELETE /api/rooms/:id
func (h *RoomHandlers) RemoveRoom(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := h.lobby.Destroy(room); err != nil {
		writeLobbyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus applies the "ready" or "started" status.
// PUT /api/rooms/:id/status/:status
func (h *RoomHandlers) UpdateStatus(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := room.ChangeStatus(callerID(c), c.Param("status")); err != nil {
		writeLobbyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// JoinRoom adds the caller to the room.
// POST /api/rooms/:id/users
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := room.Join(callerID(c)); err != nil {
		writeLobbyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LeaveRoom removes a user from the room.
// DELETE /api/rooms/:id/users/:userId
func (h *RoomHandlers) LeaveRoom(c *gin.Context) {
	room, ok := h.room(c)
	if !ok {
		return
	}
	if err := room.Leave(c.Param("userId")); err != nil {
		writeLobbyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListEvents returns the journaled lifecycle of a room, including destroyed ones.
// GET /api/rooms/:id/events?limit=N
func (h *RoomHandlers) ListEvents(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: store.ErrJournalDisabled.Error(), Code: "journal_disabled"})
		return
	}

	id, ok := roomID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit", Code: "bad_request"})
			return
		}
		limit = min(n, maxEventsLimit)
	}

	entries, err := h.journal.ListByRoom(c.Request.Context(), id, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("room_id", id).Msg("failed to list room events")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]EventResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, eventResponse(e))
	}
	c.JSON(http.StatusOK, response)
}

// room resolves the :id parameter to a live room, writing the error response
// when it cannot.
func (h *RoomHandlers) room(c *gin.Context) (*lobby.Room, bool) {
	id, ok := roomID(c)
	if !ok {
		return nil, false
	}
	room, err := h.lobby.GetByID(id)
	if err != nil {
		writeLobbyError(c, err)
		return nil, false
	}
	return room, true
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: lobby.ErrRoomNotFound.Message, Code: lobby.ErrCodeRoomNotFound})
		return 0, false
	}
	return id, true
}

// bindConfig decodes the request body as room properties. An empty body is
// an empty config.
func (h *RoomHandlers) bindConfig(c *gin.Context) (lobby.Config, bool) {
	var cfg lobby.Config
	if err := c.ShouldBindJSON(&cfg); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug().Err(err).Msg("invalid room config")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return nil, false
	}
	if cfg == nil {
		cfg = lobby.Config{}
	}
	return cfg, true
}
