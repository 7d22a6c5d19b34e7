package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/store"
)

const defaultRecorderBuffer = 64

// Recorder copies lobby events into the journal off the request path.
type Recorder struct {
	journal store.Journal
	entries chan store.Entry
	log     *zerolog.Logger
}

// NewRecorder creates a recorder queueing up to buffer entries.
func NewRecorder(journal store.Journal, buffer int, logger *zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = defaultRecorderBuffer
	}
	return &Recorder{
		journal: journal,
		entries: make(chan store.Entry, buffer),
		log:     logger,
	}
}

// Listen is a lobby.Listener. It never blocks; entries are dropped when the
// queue is full.
func (r *Recorder) Listen(ev lobby.Event) {
	entry := entryFromEvent(ev, time.Now().UTC())
	select {
	case r.entries <- entry:
	default:
		r.log.Warn().Str("event", entry.Kind).Int64("room_id", entry.RoomID).Msg("journal queue full, event dropped")
	}
}

// Run writes queued entries until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case entry := <-r.entries:
			r.write(ctx, entry)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case entry := <-r.entries:
			r.write(context.Background(), entry)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, entry store.Entry) {
	if _, err := r.journal.Append(context.WithoutCancel(ctx), entry); err != nil {
		r.log.Error().Err(err).Str("event", entry.Kind).Int64("room_id", entry.RoomID).Msg("failed to journal event")
	}
}

func entryFromEvent(ev lobby.Event, at time.Time) store.Entry {
	entry := store.Entry{
		RoomID:    ev.RoomID,
		Kind:      ev.Kind.String(),
		UserID:    ev.User,
		Owner:     ev.Room.Owner.String(),
		CreatedAt: at,
	}
	if ev.Kind == lobby.EventStatusChange {
		entry.FromStatus = ev.From.String()
		entry.ToStatus = ev.To.String()
	}
	return entry
}
