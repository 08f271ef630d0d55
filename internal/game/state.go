// internal/game/state.go
package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/arcade/internal/catalog"
)

// Kind discriminates the game state variants on the wire.
type Kind string

const (
	KindGridMark    Kind = "gridmark"
	KindConnectFour Kind = "connectfour"
	KindHandGame    Kind = "handgame"
	KindCompetition Kind = "competition"
	KindFreeform    Kind = "freeform"
)

// Terminal reasons carried by game:over.
const (
	ReasonWin          = "win"
	ReasonDraw         = "draw"
	ReasonOpponentLeft = "opponent_left"
)

// State is the game-specific part of a room. The set of implementations is
// closed: GridMarkState, ConnectFourState, HandGameState, CompetitionState and
// FreeformState.
type State interface {
	kind() Kind
	clone() State
}

// KindOf returns the variant of s, or "" for a nil state.
func KindOf(s State) Kind {
	if s == nil {
		return ""
	}
	return s.kind()
}

// Result is the verdict of a single accepted move.
type Result struct {
	State    State
	GameOver bool
	Winner   string // empty when the game continues or ends in a draw
	Reason   string
}

// NewState builds the initial state of a game that is about to start.
// players must be in room order; it decides marks, tokens and turn order.
func NewState(rules catalog.Rules, players []string, now time.Time) (State, error) {
	switch {
	case rules.TurnBased:
		if len(players) != 2 {
			return nil, fmt.Errorf("%s needs exactly 2 players, got %d", rules.ID, len(players))
		}
		switch rules.Ruleset {
		case catalog.RulesetGridMark:
			return newGridMark(players), nil
		case catalog.RulesetConnectFour:
			return newConnectFour(players), nil
		case catalog.RulesetHandGame:
			return newHandGame(players, rules.Rounds), nil
		default:
			return nil, fmt.Errorf("unsupported ruleset %q", rules.Ruleset)
		}
	case rules.ScoreCompetition:
		return newCompetition(players, rules.TimeLimitSeconds, now), nil
	default:
		return &FreeformState{Kind: KindFreeform, Players: append([]string(nil), players...)}, nil
	}
}

// Apply validates move for actor against s and returns the next state.
// s is never modified; a rejected move leaves the caller's state untouched.
func Apply(s State, actor string, move json.RawMessage) (Result, error) {
	switch st := s.(type) {
	case *GridMarkState:
		return st.apply(actor, move)
	case *ConnectFourState:
		return st.apply(actor, move)
	case *HandGameState:
		return st.apply(actor, move)
	case *CompetitionState, *FreeformState:
		return Result{}, ErrNotTurnBased
	default:
		return Result{}, fmt.Errorf("unsupported game state %T", s)
	}
}

// Public returns the view of s that may be broadcast to every player.
// Pending hand-game choices are hidden until the round resolves.
func Public(s State) State {
	hg, ok := s.(*HandGameState)
	if !ok {
		return s
	}
	view := hg.clone().(*HandGameState)
	for id := range view.Choices {
		view.Choices[id] = "hidden"
	}
	return view
}

// FreeformState carries no rules; peers exchange opaque state through the
// relay and the server never inspects it.
type FreeformState struct {
	Kind    Kind     `json:"kind"`
	Players []string `json:"players"`
}

func (s *FreeformState) kind() Kind { return KindFreeform }

func (s *FreeformState) clone() State {
	return &FreeformState{Kind: s.Kind, Players: append([]string(nil), s.Players...)}
}

func cloneStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ownerOf maps a mark or token back to the player holding it.
func ownerOf(marks map[string]string, mark string) string {
	for id, m := range marks {
		if m == mark {
			return id
		}
	}
	return ""
}
