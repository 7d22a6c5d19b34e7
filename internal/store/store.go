package store

import (
	"context"
	"errors"
	"time"
)

// ErrJournalDisabled is returned by handlers when no journal is configured.
var ErrJournalDisabled = errors.New("journal disabled")

// Entry is one recorded room lifecycle event.
type Entry struct {
	ID         int64
	RoomID     int64
	Kind       string
	UserID     string // set for user:join and user:leave
	FromStatus string // set for room:status
	ToStatus   string // set for room:status
	Owner      string
	CreatedAt  time.Time
}

// Journal is an append-only log of room lifecycle events. It is an audit
// trail; rooms are never rebuilt from it.
type Journal interface {
	Append(ctx context.Context, e Entry) (*Entry, error)
	ListByRoom(ctx context.Context, roomID int64, limit int) ([]Entry, error)
	Close() error
}
