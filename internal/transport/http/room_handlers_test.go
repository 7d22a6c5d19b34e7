package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/vovakirdan/lobby-server/internal/config"
	"github.com/vovakirdan/lobby-server/internal/lobby"
	"github.com/vovakirdan/lobby-server/internal/store"
	"github.com/vovakirdan/lobby-server/internal/store/sqlite"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if resp.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}
	if resp.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.do(t, http.MethodGet, "/api/rooms", "", nil)
	expectStatus(t, resp, http.StatusUnauthorized)
	if decodeError(t, resp).Code != "unauthorized" {
		t.Fatalf("expected unauthorized code, got %s", resp.Body.String())
	}
}

func TestCreateRoom(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.do(t, http.MethodPost, "/api/rooms", "alice", map[string]any{
		"seats":  2,
		"owner":  "mallory",
		"myprop": map[string]any{"hello": "world"},
	})
	expectStatus(t, resp, http.StatusCreated)

	room := decodeRoom(t, resp)
	if room.ID <= 0 {
		t.Errorf("expected positive id, got %d", room.ID)
	}
	if room.Owner != "alice" {
		t.Errorf("expected owner alice, got %q", room.Owner)
	}
	if room.Status != "waiting" {
		t.Errorf("expected status waiting, got %q", room.Status)
	}
	if len(room.Users) != 1 || room.Users[0] != "alice" {
		t.Errorf("expected creator to be joined, got %v", room.Users)
	}
	if _, ok := room.Config["owner"]; ok {
		t.Errorf("owner must not leak into config: %v", room.Config)
	}
	if room.Config["myprop"].(map[string]any)["hello"] != "world" {
		t.Errorf("unexpected config: %v", room.Config)
	}

	// An empty body creates an unbounded room.
	resp = env.do(t, http.MethodPost, "/api/rooms", "bob", nil)
	expectStatus(t, resp, http.StatusCreated)

	resp = env.do(t, http.MethodPost, "/api/rooms", "bob", "{not json")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestListAndGetRooms(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for _, user := range []string{"a", "b", "c"} {
		expectStatus(t, env.do(t, http.MethodPost, "/api/rooms", user, nil), http.StatusCreated)
	}

	resp := env.do(t, http.MethodGet, "/api/rooms", "a", nil)
	expectStatus(t, resp, http.StatusOK)

	var rooms []RoomResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("unmarshal rooms: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rooms))
	}
	for i, want := range []string{"a", "b", "c"} {
		if rooms[i].Owner != want {
			t.Errorf("room %d: expected owner %s, got %s", i, want, rooms[i].Owner)
		}
	}

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d", rooms[1].ID), "a", nil)
	expectStatus(t, resp, http.StatusOK)
	if decodeRoom(t, resp).Owner != "b" {
		t.Fatalf("unexpected room: %s", resp.Body.String())
	}

	resp = env.do(t, http.MethodGet, "/api/rooms/999", "a", nil)
	expectStatus(t, resp, http.StatusNotFound)
	if decodeError(t, resp).Code != lobby.ErrCodeRoomNotFound {
		t.Fatalf("unexpected error: %s", resp.Body.String())
	}

	resp = env.do(t, http.MethodGet, "/api/rooms/abc", "a", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestQueueScenario(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	queue := func(user string, seats int) RoomResponse {
		t.Helper()
		resp := env.do(t, http.MethodPost, "/api/rooms/queues", user, map[string]any{"seats": seats})
		expectStatus(t, resp, http.StatusOK)
		return decodeRoom(t, resp)
	}

	a := queue("uid1", 3)
	if a.Owner != "queue" || a.Status != "waiting" {
		t.Fatalf("unexpected first queue room: %+v", a)
	}

	if again := queue("uid1", 3); again.ID != a.ID || len(again.Users) != 1 {
		t.Fatalf("repeated queue request must return the same room: %+v", again)
	}

	if got := queue("uid2", 3); got.ID != a.ID {
		t.Fatalf("expected uid2 in room %d, got %d", a.ID, got.ID)
	}

	b := queue("uid3", 2)
	if b.ID == a.ID {
		t.Fatal("different config must land in a different room")
	}

	full := queue("uid4", 3)
	if full.ID != a.ID || full.Status != "ready" || len(full.Users) != 3 {
		t.Fatalf("expected room %d to be ready with 3 users: %+v", a.ID, full)
	}

	c := queue("uid5", 3)
	if c.ID == a.ID || c.ID == b.ID {
		t.Fatalf("expected a new room, got %d", c.ID)
	}
	if env.manager.Len() != 3 {
		t.Fatalf("expected 3 rooms, got %d", env.manager.Len())
	}
}

func TestUpdateRoom(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	room := decodeRoom(t, env.do(t, http.MethodPost, "/api/rooms", "alice", map[string]any{"mode": "casual"}))
	path := fmt.Sprintf("/api/rooms/%d", room.ID)

	resp := env.do(t, http.MethodPut, path, "bob", map[string]any{"mode": "ranked"})
	expectStatus(t, resp, http.StatusForbidden)
	if decodeError(t, resp).Code != lobby.ErrCodeNotOwner {
		t.Fatalf("unexpected error: %s", resp.Body.String())
	}

	resp = env.do(t, http.MethodPut, path, "alice", map[string]any{"mode": "ranked", "seats": 4})
	expectStatus(t, resp, http.StatusOK)
	updated := decodeRoom(t, resp)
	if updated.Config["mode"] != "ranked" || updated.Config["seats"] != float64(4) {
		t.Fatalf("unexpected config after update: %v", updated.Config)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	room := decodeRoom(t, env.do(t, http.MethodPost, "/api/rooms", "alice", map[string]any{"seats": 2}))
	statusPath := func(status string) string {
		return fmt.Sprintf("/api/rooms/%d/status/%s", room.ID, status)
	}

	tests := []struct {
		name   string
		user   string
		status string
		code   int
	}{
		{"not owner", "bob", "ready", http.StatusForbidden},
		{"ready while waiting", "alice", "ready", http.StatusConflict},
		{"computed status", "alice", "waiting", http.StatusConflict},
		{"unknown status", "alice", "paused", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, env.do(t, http.MethodPut, statusPath(tt.status), tt.user, nil), tt.code)
		})
	}

	expectStatus(t, env.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%d/users", room.ID), "bob", nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodPut, statusPath("started"), "alice", nil), http.StatusConflict)
	expectStatus(t, env.do(t, http.MethodPut, statusPath("READY"), "alice", nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodPut, statusPath("started"), "alice", nil), http.StatusNoContent)

	got, err := env.manager.GetByID(room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.Status() != lobby.StatusStarted {
		t.Fatalf("expected started, got %s", got.Status())
	}
}

func TestJoinAndLeave(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	room := decodeRoom(t, env.do(t, http.MethodPost, "/api/rooms", "alice", map[string]any{"seats": 2}))
	usersPath := fmt.Sprintf("/api/rooms/%d/users", room.ID)

	expectStatus(t, env.do(t, http.MethodPost, usersPath, "alice", nil), http.StatusConflict)
	expectStatus(t, env.do(t, http.MethodPost, usersPath, "bob", nil), http.StatusNoContent)

	resp := env.do(t, http.MethodPost, usersPath, "carol", nil)
	expectStatus(t, resp, http.StatusConflict)
	if decodeError(t, resp).Code != lobby.ErrCodeRoomFull {
		t.Fatalf("unexpected error: %s", resp.Body.String())
	}

	expectStatus(t, env.do(t, http.MethodDelete, usersPath+"/bob", "alice", nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodDelete, usersPath+"/bob", "alice", nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, usersPath+"/alice", "alice", nil), http.StatusNoContent)

	// Empty rooms stay registered.
	expectStatus(t, env.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d", room.ID), "alice", nil), http.StatusOK)
}

func TestRemoveRoom(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	room := decodeRoom(t, env.do(t, http.MethodPost, "/api/rooms", "alice", nil))
	path := fmt.Sprintf("/api/rooms/%d", room.ID)

	expectStatus(t, env.do(t, http.MethodDelete, path, "alice", nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodGet, path, "alice", nil), http.StatusNotFound)
	expectStatus(t, env.do(t, http.MethodDelete, path, "alice", nil), http.StatusNotFound)
}

func TestListEvents(t *testing.T) {
	journal, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = journal.Close() })

	ctx := context.Background()
	for _, e := range []store.Entry{
		{RoomID: 7, Kind: "room:create", Owner: "queue"},
		{RoomID: 7, Kind: "user:join", UserID: "uid1", Owner: "queue"},
		{RoomID: 7, Kind: "room:status", FromStatus: "empty", ToStatus: "waiting", Owner: "queue"},
	} {
		if _, err := journal.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	env := newTestEnv(t, journal, nil)

	resp := env.do(t, http.MethodGet, "/api/rooms/7/events", "alice", nil)
	expectStatus(t, resp, http.StatusOK)

	var events []EventResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &events); err != nil {
		t.Fatalf("unmarshal events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].User != "uid1" || events[2].To != "waiting" {
		t.Fatalf("unexpected events: %+v", events)
	}

	resp = env.do(t, http.MethodGet, "/api/rooms/7/events?limit=1", "alice", nil)
	expectStatus(t, resp, http.StatusOK)
	if err := json.Unmarshal(resp.Body.Bytes(), &events); err != nil {
		t.Fatalf("unmarshal events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	expectStatus(t, env.do(t, http.MethodGet, "/api/rooms/7/events?limit=-3", "alice", nil), http.StatusBadRequest)
}

func TestListEventsWithoutJournal(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.do(t, http.MethodGet, "/api/rooms/1/events", "alice", nil)
	expectStatus(t, resp, http.StatusNotFound)
	if decodeError(t, resp).Code != "journal_disabled" {
		t.Fatalf("unexpected error: %s", resp.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, nil, func(cfg *config.Config) { cfg.RateLimit = 2 })

	expectStatus(t, env.do(t, http.MethodGet, "/api/rooms", "alice", nil), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/api/rooms", "alice", nil), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodGet, "/api/rooms", "alice", nil), http.StatusTooManyRequests)

	// Limits are per caller.
	expectStatus(t, env.do(t, http.MethodGet, "/api/rooms", "bob", nil), http.StatusOK)
}
