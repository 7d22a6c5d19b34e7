package lobby

// OwnerKind tells who controls a room.
type OwnerKind int

const (
	// OwnerUser is a room created on behalf of a user.
	OwnerUser OwnerKind = iota
	// OwnerSystem is a room the server controls.
	OwnerSystem
	// OwnerQueue is a room created by matchmaking.
	OwnerQueue
)

const (
	systemOwnerName = "system"
	queueOwnerName  = "queue"
)

// Owner identifies the controller of a room.
type Owner struct {
	kind OwnerKind
	user string
}

// OwnedBy returns an owner for the given user id.
func OwnedBy(userID string) Owner {
	return Owner{kind: OwnerUser, user: userID}
}

// SystemOwner returns the owner of server-controlled rooms.
func SystemOwner() Owner {
	return Owner{kind: OwnerSystem}
}

// QueueOwner returns the owner of matchmaking rooms.
func QueueOwner() Owner {
	return Owner{kind: OwnerQueue}
}

// ParseOwner maps the "system" and "queue" sentinels to their owners and
// anything else to a user owner.
func ParseOwner(s string) Owner {
	switch s {
	case systemOwnerName:
		return SystemOwner()
	case queueOwnerName:
		return QueueOwner()
	default:
		return OwnedBy(s)
	}
}

// Kind returns the owner kind.
func (o Owner) Kind() OwnerKind {
	return o.kind
}

// UserID returns the owning user id, or "" for managed owners.
func (o Owner) UserID() string {
	if o.kind != OwnerUser {
		return ""
	}
	return o.user
}

// Managed reports whether the room has no human owner.
func (o Owner) Managed() bool {
	switch o.kind {
	case OwnerSystem, OwnerQueue:
		return true
	default:
		return false
	}
}

// CanUpdate reports whether caller may change the room's properties.
func (o Owner) CanUpdate(caller string) bool {
	return o.kind == OwnerUser && o.user == caller
}

// CanChangeStatus reports whether caller may request a status change.
// Managed rooms accept requests from anyone.
func (o Owner) CanChangeStatus(caller string) bool {
	switch o.kind {
	case OwnerSystem, OwnerQueue:
		return true
	case OwnerUser:
		return o.user == caller
	default:
		return false
	}
}

func (o Owner) String() string {
	switch o.kind {
	case OwnerSystem:
		return systemOwnerName
	case OwnerQueue:
		return queueOwnerName
	default:
		return o.user
	}
}

// MarshalText encodes the owner the way ParseOwner reads it.
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
