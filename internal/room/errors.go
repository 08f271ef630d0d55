// internal/room/errors.go
package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrAlreadyJoined     = errors.New("already joined this room")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNotPlaying        = errors.New("game is not in progress")
	ErrNotInRoom         = errors.New("not a member of this room")
	ErrIllegalTransition = errors.New("illegal room transition")
)
