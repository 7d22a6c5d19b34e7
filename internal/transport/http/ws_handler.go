package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/proto"
	"github.com/vovakirdan/lobby-server/internal/utils"
)

const defaultEventBuffer = 64

// WSHandler streams room lifecycle events to WebSocket subscribers.
type WSHandler struct {
	lobby  *lobby.Manager
	buffer int
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(manager *lobby.Manager, buffer int, logger *zerolog.Logger) *WSHandler {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &WSHandler{lobby: manager, buffer: buffer, log: logger}
}

// Serve upgrades the connection and pushes every lobby event, or only the
// events of one room when ?room=ID is given.
// GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	var roomID int64
	if raw := c.Query("room"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: lobby.ErrRoomNotFound.Message, Code: lobby.ErrCodeRoomNotFound})
			return
		}
		if _, err := h.lobby.GetByID(id); err != nil {
			writeLobbyError(c, err)
			return
		}
		roomID = id
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	connID := utils.NewID()
	uid := callerID(c)
	log := h.log.With().Str("conn_id", connID).Str("user_id", uid).Logger()

	events := make(chan lobby.Event, h.buffer)
	unsubscribe := h.lobby.Subscribe(func(ev lobby.Event) {
		if roomID != 0 && ev.RoomID != roomID {
			return
		}
		select {
		case events <- ev:
		default:
			// Drop if slow consumer.
			log.Warn().Str("event", ev.Kind.String()).Int64("room_id", ev.RoomID).Msg("ws subscriber lagging, event dropped")
		}
	})
	defer unsubscribe()

	// The stream is outbound only; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(c.Request.Context())

	hello := proto.Outbound{
		Type: proto.OutboundTypeHello,
		Data: proto.HelloData{Protocol: proto.ProtocolVersion, User: uid, Room: roomID},
	}
	if err := wsjson.Write(ctx, conn, hello); err != nil {
		log.Warn().Err(err).Msg("write ws hello")
		return
	}

	err = h.writeLoop(ctx, conn, events)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("ws connection closed with error")
		conn.Close(websocket.StatusInternalError, "write failed")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, events <-chan lobby.Event) error {
	for {
		select {
		case ev := <-events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(ev, time.Now())); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
