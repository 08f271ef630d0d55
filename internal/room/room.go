// internal/room/room.go
package room

import (
	"encoding/json"
	"time"

	"github.com/jason-s-yu/arcade/internal/catalog"
	"github.com/jason-s-yu/arcade/internal/game"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/samber/lo"
)

// Player is a seat in a room.
type Player struct {
	ID    string `json:"id"`
	Ready bool   `json:"ready"`
}

// Room groups a small fixed set of players around one game instance.
// Players is ordered: it decides marks, tokens and turn order.
type Room struct {
	ID          string
	GameID      string
	HostID      string
	Players     []*Player
	State       State
	IsPrivate   bool
	GameState   game.State // nil while Waiting
	CurrentTurn string     // turn-based games only, and only while Playing
	Config      catalog.Rules
	CreatedAt   time.Time
	StartedAt   time.Time

	// Outcome is set when the room reaches Finished.
	Outcome *models.MatchOutcome
}

// PlayerIDs returns the identities seated in the room, in order.
func (r *Room) PlayerIDs() []string {
	return lo.Map(r.Players, func(p *Player, _ int) string { return p.ID })
}

// HasPlayer reports whether identity holds a seat.
func (r *Room) HasPlayer(identity string) bool {
	_, ok := r.player(identity)
	return ok
}

func (r *Room) player(identity string) (*Player, bool) {
	return lo.Find(r.Players, func(p *Player) bool { return p.ID == identity })
}

// Full reports whether the room is at its configured capacity.
func (r *Room) Full() bool {
	return len(r.Players) >= r.Config.MaxPlayers
}

func (r *Room) allReady() bool {
	return lo.EveryBy(r.Players, func(p *Player) bool { return p.Ready })
}

// tryStart starts the game if every player is ready and quorum is met.
func (r *Room) tryStart(now time.Time) (bool, error) {
	if r.State != Waiting || len(r.Players) < r.Config.MinPlayers || !r.allReady() {
		return false, nil
	}
	next, err := Transition(r.State, TriggerStart)
	if err != nil {
		return false, err
	}
	gs, err := game.NewState(r.Config, r.PlayerIDs(), now)
	if err != nil {
		return false, err
	}
	r.State = next
	r.GameState = gs
	r.StartedAt = now
	if r.Config.TurnBased {
		r.CurrentTurn = r.Players[0].ID
	}
	return true, nil
}

// finish moves a Playing room to Finished and records the outcome.
// winners is empty for a draw.
func (r *Room) finish(winners []string, reason string, now time.Time) error {
	next, err := Transition(r.State, TriggerFinish)
	if err != nil {
		return err
	}
	r.State = next
	r.CurrentTurn = ""
	o := &models.MatchOutcome{
		RoomID:     r.ID,
		GameID:     r.GameID,
		Players:    r.PlayerIDs(),
		Winners:    winners,
		Reason:     reason,
		Scores:     scoresOf(r.GameState),
		StartedAt:  r.StartedAt,
		FinishedAt: now,
	}
	if len(winners) > 0 {
		o.Winner = winners[0]
	}
	r.Outcome = o
	return nil
}

// ApplyMove runs a turn-based move for actor. On success the turn passes to
// the next player in room order, or the room finishes on a terminal move.
// A rejected move leaves the room untouched.
func (r *Room) ApplyMove(actor string, move json.RawMessage, now time.Time) (game.Result, error) {
	if r.State != Playing {
		return game.Result{}, ErrNotPlaying
	}
	if !r.Config.TurnBased {
		return game.Result{}, game.ErrNotTurnBased
	}
	if !r.HasPlayer(actor) {
		return game.Result{}, ErrNotInRoom
	}
	if actor != r.CurrentTurn {
		return game.Result{}, ErrNotYourTurn
	}
	res, err := game.Apply(r.GameState, actor, move)
	if err != nil {
		return game.Result{}, err
	}
	r.GameState = res.State
	if res.GameOver {
		return res, r.finish(winnersOf(res.Winner), res.Reason, now)
	}
	r.advanceTurn()
	return res, nil
}

func (r *Room) advanceTurn() {
	ids := r.PlayerIDs()
	i := lo.IndexOf(ids, r.CurrentTurn)
	r.CurrentTurn = ids[(i+1)%len(ids)]
}

// ReportScore records a live score for a score competition.
func (r *Room) ReportScore(actor string, score int) error {
	if r.State != Playing {
		return ErrNotPlaying
	}
	cs, err := game.ReportScore(r.GameState, actor, score)
	if err != nil {
		return err
	}
	r.GameState = cs
	return nil
}

// ReportFinished records a final score. When it is the last one outstanding
// the room finishes.
func (r *Room) ReportFinished(actor string, finalScore int, now time.Time) (game.Result, error) {
	if r.State != Playing {
		return game.Result{}, ErrNotPlaying
	}
	res, err := game.ReportFinished(r.GameState, actor, finalScore)
	if err != nil {
		return game.Result{}, err
	}
	r.GameState = res.State
	if res.GameOver {
		return res, r.finish(winnersOf(res.Winner), res.Reason, now)
	}
	return res, nil
}

// View is the broadcast form of the room, with hidden game state redacted.
func (r *Room) View() models.RoomView {
	v := models.RoomView{
		ID:     r.ID,
		GameID: r.GameID,
		HostID: r.HostID,
		Players: lo.Map(r.Players, func(p *Player, _ int) models.PlayerView {
			return models.PlayerView{ID: p.ID, Ready: p.Ready}
		}),
		State:       string(r.State),
		IsPrivate:   r.IsPrivate,
		CurrentTurn: r.CurrentTurn,
		Config:      r.Config,
		CreatedAt:   r.CreatedAt,
	}
	if r.GameState != nil {
		v.GameState = game.Public(r.GameState)
	}
	return v
}

func winnersOf(winner string) []string {
	if winner == "" {
		return nil
	}
	return []string{winner}
}

func scoresOf(s game.State) map[string]int {
	switch st := s.(type) {
	case *game.HandGameState:
		return lo.Assign(st.Scores)
	case *game.CompetitionState:
		return lo.Assign(st.Scores)
	default:
		return nil
	}
}
