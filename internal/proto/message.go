package proto

const (
	ProtocolVersion = 1

	OutboundTypeHello = "hello"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound is the envelope for messages sent to WebSocket subscribers.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// HelloData greets a subscriber after the upgrade.
type HelloData struct {
	Protocol int    `json:"protocol"`
	User     string `json:"user"`
	Room     int64  `json:"room,omitempty"`
}

// RoomState mirrors a room snapshot.
type RoomState struct {
	ID     int64          `json:"id"`
	Owner  string         `json:"owner"`
	Status string         `json:"status"`
	Users  []string       `json:"users"`
	Config map[string]any `json:"config"`
}

// EventData describes a room lifecycle event.
type EventData struct {
	Room  int64     `json:"room"`
	User  string    `json:"user,omitempty"`
	From  string    `json:"from,omitempty"`
	To    string    `json:"to,omitempty"`
	State RoomState `json:"state"`
	TS    int64     `json:"ts"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
