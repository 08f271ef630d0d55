// internal/session/errors.go
package session

import (
	"errors"

	"github.com/jason-s-yu/arcade/internal/auth"
	"github.com/jason-s-yu/arcade/internal/catalog"
	"github.com/jason-s-yu/arcade/internal/game"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/jason-s-yu/arcade/internal/room"
)

var (
	errNotAuthenticated = errors.New("authenticate before using rooms")
	errInvalidPayload   = errors.New("invalid payload")
	errNoRoom           = errors.New("not in a room")
	errNotFriends       = errors.New("invites are limited to friends")
)

// errorCode maps a handler error onto the code reported to the client.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errNotAuthenticated):
		return models.CodeNotAuthenticated
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, errNotFriends):
		return models.CodeUnauthorized
	case errors.Is(err, errInvalidPayload):
		return models.CodeInvalidPayload
	case errors.Is(err, catalog.ErrUnknownGame):
		return models.CodeUnknownGame
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrNotInRoom), errors.Is(err, errNoRoom):
		return models.CodeRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		return models.CodeRoomFull
	case errors.Is(err, room.ErrGameInProgress):
		return models.CodeGameAlreadyInProgress
	case errors.Is(err, room.ErrAlreadyJoined):
		return models.CodeAlreadyJoined
	case errors.Is(err, room.ErrNotYourTurn):
		return models.CodeNotYourTurn
	case errors.Is(err, room.ErrNotPlaying):
		return models.CodeGameNotInProgress
	case errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrNotTurnBased),
		errors.Is(err, game.ErrNotCompetition),
		errors.Is(err, game.ErrAlreadyFinished),
		errors.Is(err, game.ErrNotPlayer):
		return models.CodeInvalidMove
	default:
		return models.CodeServerError
	}
}
