package app

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/lobby"
)

// EventLogger returns a listener writing one log line per lobby event.
func EventLogger(logger *zerolog.Logger) lobby.Listener {
	return func(ev lobby.Event) {
		entry := logger.Info()
		if ev.Kind == lobby.EventUserJoin || ev.Kind == lobby.EventUserLeave {
			entry = logger.Debug()
		}

		entry = entry.Str("event", ev.Kind.String()).
			Int64("room_id", ev.RoomID).
			Str("owner", ev.Room.Owner.String()).
			Str("status", ev.Room.Status.String()).
			Int("users", len(ev.Room.Users))
		if ev.User != "" {
			entry = entry.Str("user_id", ev.User)
		}
		if ev.Kind == lobby.EventStatusChange {
			entry = entry.Str("from", ev.From.String()).Str("to", ev.To.String())
		}
		entry.Msg("room event")
	}
}
