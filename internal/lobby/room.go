package lobby

import (
	"fmt"
	"slices"
	"sync"
)

// Snapshot is an immutable copy of a room's state.
type Snapshot struct {
	ID     int64    `json:"id"`
	Owner  Owner    `json:"owner"`
	Status Status   `json:"status"`
	Users  []string `json:"users"`
	Config Config   `json:"config"`
}

// Room is a single session: its members, properties and lifecycle status.
// All methods are safe for concurrent use.
type Room struct {
	id    int64
	owner Owner

	mu     sync.Mutex
	status Status
	users  map[string]struct{}
	config Config

	events emitter
	// parent receives every event after the room's own listeners.
	parent *emitter
}

func newRoom(id int64, owner Owner, cfg Config, parent *emitter) *Room {
	return &Room{
		id:     id,
		owner:  owner,
		status: StatusEmpty,
		users:  make(map[string]struct{}),
		config: cfg.Clone(),
		parent: parent,
	}
}

// ID returns the room id.
func (r *Room) ID() int64 {
	return r.id
}

// Owner returns the room owner.
func (r *Room) Owner() Owner {
	return r.owner
}

// Status returns the current status.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Has reports whether userID is a member.
func (r *Room) Has(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userID]
	return ok
}

// Len returns the member count.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// Config returns a copy of the room properties.
func (r *Room) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Clone()
}

// Subscribe registers a listener for this room's events. With no kinds the
// listener receives everything. The returned function unsubscribes.
func (r *Room) Subscribe(fn Listener, kinds ...EventKind) func() {
	return r.events.subscribe(fn, kinds...)
}

// Join adds userID to the room.
func (r *Room) Join(userID string) error {
	events, err := r.join(userID)
	if err != nil {
		return err
	}
	r.dispatch(events)
	return nil
}

func (r *Room) join(userID string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; ok {
		return nil, fmt.Errorf("join room %d: %w", r.id, ErrAlreadyJoined)
	}
	capacity := r.config.Seats()
	if !r.status.AcceptsJoins() || (capacity > 0 && len(r.users) >= capacity) {
		return nil, fmt.Errorf("join room %d: %w", r.id, ErrRoomFull)
	}

	r.users[userID] = struct{}{}
	from := r.status
	r.status = statusAfterJoin(r.owner, len(r.users), capacity)

	snap := r.snapshotLocked()
	events := []Event{{Kind: EventUserJoin, RoomID: r.id, User: userID, Room: snap}}
	if capacity > 0 && len(r.users) == capacity {
		events = append(events, Event{Kind: EventRoomFull, RoomID: r.id, Room: snap})
	}
	if from != r.status {
		events = append(events, Event{Kind: EventStatusChange, RoomID: r.id, From: from, To: r.status, Room: snap})
	}
	return events, nil
}

// Leave removes userID from the room. The status is left untouched and the
// room stays registered even when it becomes empty.
func (r *Room) Leave(userID string) error {
	r.mu.Lock()
	if _, ok := r.users[userID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("leave room %d: %w", r.id, ErrUserNotInRoom)
	}
	delete(r.users, userID)
	ev := Event{Kind: EventUserLeave, RoomID: r.id, User: userID, Room: r.snapshotLocked()}
	r.mu.Unlock()

	r.dispatch([]Event{ev})
	return nil
}

// Ready confirms a full room. Only valid from StatusFull.
func (r *Room) Ready() error {
	return r.setStatus(StatusReady)
}

// Start begins the session. Only valid from StatusReady.
func (r *Room) Start() error {
	return r.setStatus(StatusStarted)
}

func (r *Room) setStatus(to Status) error {
	r.mu.Lock()
	from := r.status
	if err := transition(from, to); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("room %d: %w", r.id, err)
	}
	r.status = to
	ev := Event{Kind: EventStatusChange, RoomID: r.id, From: from, To: to, Room: r.snapshotLocked()}
	r.mu.Unlock()

	r.dispatch([]Event{ev})
	return nil
}

// ChangeStatus applies a status requested by name on behalf of caller.
// Only the owner may do so, except in managed rooms. Only "ready" and
// "started" can be requested.
func (r *Room) ChangeStatus(caller, name string) error {
	if !r.owner.CanChangeStatus(caller) {
		return fmt.Errorf("change status of room %d: %w", r.id, ErrNotOwner)
	}
	to, err := ParseStatus(name)
	if err != nil {
		return err
	}
	return r.setStatus(to)
}

// Update merges patch into the room properties on behalf of caller. Only
// the owning user may update; id, owner, status and users cannot be changed.
func (r *Room) Update(caller string, patch Config) error {
	if !r.owner.CanUpdate(caller) {
		return fmt.Errorf("update room %d: %w", r.id, ErrNotOwner)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range patch.Clone() {
		r.config[k] = v
	}
	return nil
}

// Snapshot returns a copy of the room state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	users := make([]string, 0, len(r.users))
	for u := range r.users {
		users = append(users, u)
	}
	slices.Sort(users)
	return Snapshot{
		ID:     r.id,
		Owner:  r.owner,
		Status: r.status,
		Users:  users,
		Config: r.config.Clone(),
	}
}

func (s Snapshot) clone() Snapshot {
	s.Users = slices.Clone(s.Users)
	s.Config = s.Config.Clone()
	return s
}

func (r *Room) dispatch(events []Event) {
	r.events.emit(events...)
	if r.parent != nil {
		r.parent.emit(events...)
	}
}
