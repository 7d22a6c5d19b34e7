package lobby

import (
	"slices"
	"sync"
)

// EventKind is a lifecycle notification emitted by rooms and the manager.
type EventKind int

const (
	// EventRoomCreate is emitted by the manager when a room is created.
	EventRoomCreate EventKind = iota
	// EventRoomDestroy is emitted by the manager when a room is removed.
	EventRoomDestroy
	// EventUserJoin is emitted when a user joins a room.
	EventUserJoin
	// EventUserLeave is emitted when a user leaves a room.
	EventUserLeave
	// EventRoomFull is emitted when a join brings a room to capacity.
	EventRoomFull
	// EventStatusChange is emitted whenever a room's status changes.
	EventStatusChange
)

var eventNames = [...]string{
	EventRoomCreate:   "room:create",
	EventRoomDestroy:  "room:destroy",
	EventUserJoin:     "user:join",
	EventUserLeave:    "user:leave",
	EventRoomFull:     "room:full",
	EventStatusChange: "room:status",
}

func (k EventKind) String() string {
	if k < EventRoomCreate || k > EventStatusChange {
		return "unknown"
	}
	return eventNames[k]
}

// Event describes a single lifecycle change.
type Event struct {
	Kind   EventKind
	RoomID int64
	// User is set for join and leave events.
	User string
	// From and To are set for status changes.
	From Status
	To   Status
	// Room is the room state right after the change.
	Room Snapshot
}

// Listener receives events synchronously on the goroutine that caused them.
// Each listener gets its own copy of Event.Room.
type Listener func(Event)

type subscription struct {
	id    int
	kinds []EventKind
	fn    Listener
}

func (s *subscription) wants(kind EventKind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, kind)
}

// emitter keeps listeners in subscription order.
type emitter struct {
	mu     sync.Mutex
	nextID int
	subs   []*subscription
}

// subscribe registers fn for the given kinds (all kinds when none are given)
// and returns a function that removes it.
func (e *emitter) subscribe(fn Listener, kinds ...EventKind) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, &subscription{id: id, kinds: slices.Clone(kinds), fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { e.unsubscribe(id) })
	}
}

func (e *emitter) unsubscribe(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = slices.DeleteFunc(e.subs, func(s *subscription) bool { return s.id == id })
}

func (e *emitter) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.mu.Lock()
	subs := slices.Clone(e.subs)
	e.mu.Unlock()

	for _, ev := range events {
		for _, s := range subs {
			if s.wants(ev.Kind) {
				delivered := ev
				delivered.Room = ev.Room.clone()
				s.fn(delivered)
			}
		}
	}
}
