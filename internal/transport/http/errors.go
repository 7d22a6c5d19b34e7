package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/lobby-server/internal/lobby"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusForError maps lobby error kinds to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, lobby.ErrRoomNotFound), errors.Is(err, lobby.ErrUserNotInRoom):
		return http.StatusNotFound
	case errors.Is(err, lobby.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, lobby.ErrRoomStatusNotFound):
		return http.StatusBadRequest
	case errors.Is(err, lobby.ErrRoomStatusNotAllowed),
		errors.Is(err, lobby.ErrRoomFull),
		errors.Is(err, lobby.ErrAlreadyJoined):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeLobbyError translates err into a JSON error response.
func writeLobbyError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}

	var le *lobby.Error
	msg := err.Error()
	if errors.As(err, &le) {
		msg = le.Message
	}
	c.JSON(status, ErrorResponse{Error: msg, Code: lobby.Code(err)})
}

func abortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}
