// internal/catalog/rules.go
package catalog

import (
	"errors"
	"fmt"
)

// Ruleset names the move processor a turn-based game is played with.
type Ruleset string

const (
	RulesetGridMark    Ruleset = "gridmark"    // 3x3 grid, three marks in a line
	RulesetConnectFour Ruleset = "connectfour" // 6x7 board with gravity, four in a row
	RulesetHandGame    Ruleset = "handgame"    // rock/paper/scissors, best of N rounds
)

// ErrUnknownGame is returned whenever a game identifier is not registered.
var ErrUnknownGame = errors.New("unknown game")

// Rules describes what the match server needs to know about a game.
// A copy is frozen into every room at creation time.
type Rules struct {
	ID               string  `json:"id" yaml:"id"`
	MinPlayers       int     `json:"minPlayers" yaml:"minPlayers"`                                 // quorum required before the game may start
	MaxPlayers       int     `json:"maxPlayers" yaml:"maxPlayers"`                                 // joins beyond this are rejected
	TurnBased        bool    `json:"turnBased" yaml:"turnBased"`                                   // exactly one player acts at a time
	ScoreCompetition bool    `json:"scoreCompetition" yaml:"scoreCompetition"`                     // players race on independent client-side instances
	TimeLimitSeconds int     `json:"timeLimitSeconds,omitempty" yaml:"timeLimitSeconds,omitempty"` // advisory only; 0 means none
	Ruleset          Ruleset `json:"ruleset,omitempty" yaml:"ruleset,omitempty"`                   // required when TurnBased
	Rounds           int     `json:"rounds,omitempty" yaml:"rounds,omitempty"`                     // round count for the hand game; defaults to 3
}

// Freeform reports whether the game is neither turn-based nor a score
// competition. The server only relays opaque peer state for these.
func (r Rules) Freeform() bool {
	return !r.TurnBased && !r.ScoreCompetition
}

// Validate checks the descriptor is internally consistent.
func (r Rules) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if r.MinPlayers < 1 {
		return fmt.Errorf("game %s: minPlayers must be at least 1", r.ID)
	}
	if r.MaxPlayers < r.MinPlayers {
		return fmt.Errorf("game %s: maxPlayers must be >= minPlayers", r.ID)
	}
	if r.TurnBased && r.ScoreCompetition {
		return fmt.Errorf("game %s: cannot be both turn-based and a score competition", r.ID)
	}
	if r.TimeLimitSeconds < 0 {
		return fmt.Errorf("game %s: timeLimitSeconds must be non-negative", r.ID)
	}
	if r.TurnBased {
		if r.MinPlayers != 2 || r.MaxPlayers != 2 {
			return fmt.Errorf("game %s: turn-based rulesets are played by exactly two players", r.ID)
		}
		switch r.Ruleset {
		case RulesetGridMark, RulesetConnectFour, RulesetHandGame:
		default:
			return fmt.Errorf("game %s: unsupported ruleset %q", r.ID, r.Ruleset)
		}
	}
	return nil
}
