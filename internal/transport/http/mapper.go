package http

import (
	"time"

	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/proto"
	"github.com/vovakirdan/lobby-server/internal/store"
)

// RoomResponse represents a room in API responses.
type RoomResponse = proto.RoomState

// EventResponse represents a journal entry in API responses.
type EventResponse struct {
	ID        int64  `json:"id"`
	Room      int64  `json:"room"`
	Event     string `json:"event"`
	User      string `json:"user,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Owner     string `json:"owner,omitempty"`
	CreatedAt string `json:"created_at"`
}

func roomResponse(snap lobby.Snapshot) RoomResponse {
	cfg := map[string]any(snap.Config)
	if cfg == nil {
		cfg = map[string]any{}
	}
	return RoomResponse{
		ID:     snap.ID,
		Owner:  snap.Owner.String(),
		Status: snap.Status.String(),
		Users:  snap.Users,
		Config: cfg,
	}
}

func eventResponse(e store.Entry) EventResponse {
	return EventResponse{
		ID:        e.ID,
		Room:      e.RoomID,
		Event:     e.Kind,
		User:      e.UserID,
		From:      e.FromStatus,
		To:        e.ToStatus,
		Owner:     e.Owner,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func outboundFromEvent(ev lobby.Event, now time.Time) proto.Outbound {
	data := proto.EventData{
		Room:  ev.RoomID,
		User:  ev.User,
		State: roomResponse(ev.Room),
		TS:    now.Unix(),
	}
	if ev.Kind == lobby.EventStatusChange {
		data.From = ev.From.String()
		data.To = ev.To.String()
	}
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: ev.Kind.String(),
		Data:  data,
	}
}
