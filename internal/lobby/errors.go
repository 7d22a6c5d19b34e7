package lobby

import "errors"

// Error codes for lobby errors.
const (
	ErrCodeRoomNotFound         = "room_not_found"
	ErrCodeNotOwner             = "not_owner"
	ErrCodeRoomStatusNotAllowed = "room_status_not_allowed"
	ErrCodeRoomStatusNotFound   = "room_status_not_found"
	ErrCodeRoomFull             = "room_full"
	ErrCodeAlreadyJoined        = "already_joined"
	ErrCodeUserNotInRoom        = "user_not_in_room"
)

var (
	ErrRoomNotFound         = lobbyError(ErrCodeRoomNotFound, "room not found")
	ErrNotOwner             = lobbyError(ErrCodeNotOwner, "only the owner can do this")
	ErrRoomStatusNotAllowed = lobbyError(ErrCodeRoomStatusNotAllowed, "room status not allowed")
	ErrRoomStatusNotFound   = lobbyError(ErrCodeRoomStatusNotFound, "room status not found")
	ErrRoomFull             = lobbyError(ErrCodeRoomFull, "room is full")
	ErrAlreadyJoined        = lobbyError(ErrCodeAlreadyJoined, "already joined")
	ErrUserNotInRoom        = lobbyError(ErrCodeUserNotInRoom, "user not in room")
)

// Error wraps a code and human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func lobbyError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Code returns the lobby error code carried by err, or "" if err is not a lobby error.
func Code(err error) string {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}
