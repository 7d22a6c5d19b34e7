package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/lobby-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id     INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	from_status TEXT NOT NULL DEFAULT '',
	to_status   TEXT NOT NULL DEFAULT '',
	owner       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_room_events_room ON room_events(room_id, id);
`

// defaultListLimit caps ListByRoom when the caller passes no limit.
const defaultListLimit = 100

// SQLiteStore implements store.Journal for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the journal database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Append records an entry and returns it with its id and timestamp.
func (s *SQLiteStore) Append(ctx context.Context, e store.Entry) (*store.Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO room_events (room_id, kind, user_id, from_status, to_status, owner, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, e.RoomID, e.Kind, e.UserID, e.FromStatus, e.ToStatus, e.Owner, e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert room event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id

	return &e, nil
}

// ListByRoom returns up to limit entries of a room, oldest first.
func (s *SQLiteStore) ListByRoom(ctx context.Context, roomID int64, limit int) ([]store.Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, room_id, kind, user_id, from_status, to_status, owner, created_at
		FROM room_events
		WHERE room_id = ?
		ORDER BY id ASC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query room events: %w", err)
	}
	defer rows.Close()

	var entries []store.Entry
	for rows.Next() {
		var e store.Entry
		if err := rows.Scan(&e.ID, &e.RoomID, &e.Kind, &e.UserID, &e.FromStatus, &e.ToStatus, &e.Owner, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room event: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room events: %w", err)
	}

	return entries, nil
}
