// internal/game/competition.go
package game

import (
	"errors"
	"time"
)

// ErrAlreadyFinished is returned for score reports from a player who has
// already submitted a final score.
var ErrAlreadyFinished = errors.New("player already finished")

// CompetitionState tracks a parallel-play score race. The server never
// simulates the game; it records what clients report.
type CompetitionState struct {
	Kind      Kind            `json:"kind"`
	Players   []string        `json:"players"`
	Scores    map[string]int  `json:"scores"`
	Finished  map[string]bool `json:"finished"`
	TimeLimit int             `json:"timeLimit"` // seconds, advisory only
	StartTime time.Time       `json:"startTime"`
}

func newCompetition(players []string, timeLimit int, now time.Time) *CompetitionState {
	s := &CompetitionState{
		Kind:      KindCompetition,
		Players:   append([]string(nil), players...),
		Scores:    make(map[string]int, len(players)),
		Finished:  make(map[string]bool, len(players)),
		TimeLimit: timeLimit,
		StartTime: now,
	}
	for _, p := range players {
		s.Scores[p] = 0
		s.Finished[p] = false
	}
	return s
}

func (s *CompetitionState) kind() Kind { return KindCompetition }

func (s *CompetitionState) clone() State {
	c := *s
	c.Players = append([]string(nil), s.Players...)
	c.Scores = cloneInts(s.Scores)
	c.Finished = make(map[string]bool, len(s.Finished))
	for k, v := range s.Finished {
		c.Finished[k] = v
	}
	return &c
}

// ReportScore overwrites the live score of actor. It never ends the game.
func ReportScore(s State, actor string, score int) (*CompetitionState, error) {
	cs, ok := s.(*CompetitionState)
	if !ok {
		return nil, ErrNotCompetition
	}
	if _, ok := cs.Scores[actor]; !ok {
		return nil, ErrNotPlayer
	}
	if cs.Finished[actor] {
		return nil, ErrAlreadyFinished
	}
	next := cs.clone().(*CompetitionState)
	next.Scores[actor] = score
	return next, nil
}

// ReportFinished records the final score of actor. Once every player has
// finished the result is terminal: the strictly highest score wins, and a tie
// for the top score is a draw.
func ReportFinished(s State, actor string, finalScore int) (Result, error) {
	cs, ok := s.(*CompetitionState)
	if !ok {
		return Result{}, ErrNotCompetition
	}
	if _, ok := cs.Scores[actor]; !ok {
		return Result{}, ErrNotPlayer
	}
	if cs.Finished[actor] {
		return Result{}, ErrAlreadyFinished
	}
	next := cs.clone().(*CompetitionState)
	next.Scores[actor] = finalScore
	next.Finished[actor] = true

	if !next.allFinished() {
		return Result{State: next}, nil
	}
	if winner := next.leader(); winner != "" {
		return Result{State: next, GameOver: true, Winner: winner, Reason: ReasonWin}, nil
	}
	return Result{State: next, GameOver: true, Reason: ReasonDraw}, nil
}

func (s *CompetitionState) allFinished() bool {
	for _, p := range s.Players {
		if !s.Finished[p] {
			return false
		}
	}
	return true
}

// leader returns the player with the strictly highest score, or "" on a tie.
func (s *CompetitionState) leader() string {
	var best string
	tied := false
	for _, p := range s.Players {
		switch {
		case best == "" || s.Scores[p] > s.Scores[best]:
			best, tied = p, false
		case s.Scores[p] == s.Scores[best]:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return best
}
