package lobby

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a room.
//
// EMPTY, WAITING and FULL are computed from membership and can never be
// requested directly. READY and STARTED are reached through Ready and Start.
type Status int

const (
	// StatusEmpty is a freshly created room nobody has joined yet.
	StatusEmpty Status = iota
	// StatusWaiting has members but room for more.
	StatusWaiting
	// StatusFull is a user-owned room at capacity waiting for its owner to confirm.
	StatusFull
	// StatusReady is a room that can be started.
	StatusReady
	// StatusStarted is a room whose session began.
	StatusStarted
)

var statusNames = [...]string{
	StatusEmpty:   "empty",
	StatusWaiting: "waiting",
	StatusFull:    "full",
	StatusReady:   "ready",
	StatusStarted: "started",
}

func (s Status) String() string {
	if s < StatusEmpty || s > StatusStarted {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus resolves a status name, ignoring case.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range statusNames {
		if n == name {
			return Status(s), nil
		}
	}
	return 0, fmt.Errorf("status %q: %w", name, ErrRoomStatusNotFound)
}

// Computed reports whether the status is derived from membership only.
func (s Status) Computed() bool {
	return s == StatusEmpty || s == StatusWaiting || s == StatusFull
}

// AcceptsJoins reports whether new members may join a room in this status.
func (s Status) AcceptsJoins() bool {
	return s == StatusEmpty || s == StatusWaiting
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	if s < StatusEmpty || s > StatusStarted {
		return nil, fmt.Errorf("marshal %v: %w", s, ErrRoomStatusNotFound)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// statusAfterJoin computes the status of a room once it holds members users.
// capacity <= 0 means the room is unbounded.
func statusAfterJoin(owner Owner, members, capacity int) Status {
	if capacity > 0 && members >= capacity {
		if owner.Managed() {
			return StatusReady
		}
		return StatusFull
	}
	return StatusWaiting
}

// transition validates an explicit status request against the current status.
func transition(from, to Status) error {
	switch to {
	case StatusReady:
		if from != StatusFull {
			return fmt.Errorf("%s -> %s: %w", from, to, ErrRoomStatusNotAllowed)
		}
	case StatusStarted:
		if from != StatusReady {
			return fmt.Errorf("%s -> %s: %w", from, to, ErrRoomStatusNotAllowed)
		}
	case StatusEmpty, StatusWaiting, StatusFull:
		return fmt.Errorf("only ready or started can be applied: %w", ErrRoomStatusNotAllowed)
	default:
		return fmt.Errorf("status %v: %w", to, ErrRoomStatusNotFound)
	}
	return nil
}
