// Package lobby manages multiplayer rooms: membership, lifecycle status and
// matchmaking of queued users into compatible open rooms.
package lobby

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Manager is the registry of live rooms and the matchmaking entry point.
// Construct one per process with NewManager and hand it to the request layer.
type Manager struct {
	mu     sync.RWMutex
	rooms  []*Room
	nextID int64

	events emitter
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{}
}

// Subscribe registers a listener for manager events (room:create,
// room:destroy) and for the events of every room the manager owns.
func (m *Manager) Subscribe(fn Listener, kinds ...EventKind) func() {
	return m.events.subscribe(fn, kinds...)
}

// Create registers a new empty room with the given owner and properties.
func (m *Manager) Create(owner Owner, cfg Config) *Room {
	m.mu.Lock()
	room := m.createLocked(owner, cfg)
	m.mu.Unlock()

	m.events.emit(createEvent(room))
	return room
}

func (m *Manager) createLocked(owner Owner, cfg Config) *Room {
	m.nextID++
	room := newRoom(m.nextID, owner, cfg, &m.events)
	m.rooms = append(m.rooms, room)
	return room
}

func createEvent(room *Room) Event {
	return Event{Kind: EventRoomCreate, RoomID: room.ID(), Room: room.Snapshot()}
}

// GetByID returns the live room with the given id.
func (m *Manager) GetByID(id int64) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexLocked(id); i >= 0 {
		return m.rooms[i], nil
	}
	return nil, fmt.Errorf("room %d: %w", id, ErrRoomNotFound)
}

// indexLocked finds a room by binary search; ids grow with insertion order.
func (m *Manager) indexLocked(id int64) int {
	i, found := slices.BinarySearchFunc(m.rooms, id, func(r *Room, target int64) int {
		switch {
		case r.id < target:
			return -1
		case r.id > target:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return -1
	}
	return i
}

// GetRoomByUser returns the most recently created room userID is a member of.
func (m *Manager) GetRoomByUser(userID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if room := m.roomByUserLocked(userID); room != nil {
		return room, nil
	}
	return nil, fmt.Errorf("room of user %q: %w", userID, ErrRoomNotFound)
}

func (m *Manager) roomByUserLocked(userID string) *Room {
	for i := len(m.rooms) - 1; i >= 0; i-- {
		if m.rooms[i].Has(userID) {
			return m.rooms[i]
		}
	}
	return nil
}

// Queue places userID in an open matchmaking room whose properties match cfg
// on cfg's keys, creating one when none exists. Reserved keys in cfg are
// ignored, as they are when a room is created.
//
// When the user's latest room is a queue room matching cfg it is returned as
// is, so repeating a queue request does not fail. A request with different
// properties puts the user in a second room; leaving is always explicit.
func (m *Manager) Queue(userID string, cfg Config) (*Room, error) {
	cfg = cfg.Clone()

	m.mu.Lock()

	if last := m.roomByUserLocked(userID); last != nil && last.owner.Kind() == OwnerQueue && last.Config().Matches(cfg) {
		m.mu.Unlock()
		return last, nil
	}

	for _, r := range m.rooms {
		if r.owner.Kind() != OwnerQueue || !r.Status().AcceptsJoins() || !r.Config().Matches(cfg) {
			continue
		}
		if r.Has(userID) {
			m.mu.Unlock()
			return r, nil
		}

		// A direct join may have filled the room since the status check.
		joined, err := r.join(userID)
		if errors.Is(err, ErrRoomFull) || errors.Is(err, ErrAlreadyJoined) {
			continue
		}
		m.mu.Unlock()
		if err != nil {
			return nil, err
		}
		r.dispatch(joined)
		return r, nil
	}

	room := m.createLocked(QueueOwner(), cfg)
	createEv := createEvent(room)
	joined, err := room.join(userID)
	m.mu.Unlock()

	m.events.emit(createEv)
	if err != nil {
		return nil, err
	}
	room.dispatch(joined)
	return room, nil
}

// Destroy removes room from the registry.
func (m *Manager) Destroy(room *Room) error {
	if room == nil {
		return fmt.Errorf("destroy: %w", ErrRoomNotFound)
	}
	return m.RemoveRoom(room.ID())
}

// RemoveRoom removes the room with the given id from the registry. Holders of
// the room keep a valid reference but it can no longer be fetched.
func (m *Manager) RemoveRoom(id int64) error {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("remove room %d: %w", id, ErrRoomNotFound)
	}
	room := m.rooms[i]
	m.rooms = slices.Delete(m.rooms, i, i+1)
	m.mu.Unlock()

	m.events.emit(Event{Kind: EventRoomDestroy, RoomID: id, Room: room.Snapshot()})
	return nil
}

// GetRooms returns the live rooms in creation order.
func (m *Manager) GetRooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.rooms)
}

// Snapshots returns the state of every live room in creation order.
func (m *Manager) Snapshots() []Snapshot {
	rooms := m.GetRooms()
	out := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

// Len returns the number of live rooms.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
