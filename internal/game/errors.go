// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove covers every rejected move; the wrapped message carries the detail.
	ErrInvalidMove = errors.New("invalid move")
	// ErrNotTurnBased is returned when a move is sent to a game without a move processor.
	ErrNotTurnBased = errors.New("game does not accept moves")
	// ErrNotCompetition is returned for score reports in games that are not score competitions.
	ErrNotCompetition = errors.New("game is not a score competition")
	// ErrNotPlayer is returned when the actor holds no seat in the game.
	ErrNotPlayer = errors.New("not a player in this game")
)

func invalidMove(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMove, fmt.Sprintf(format, args...))
}
