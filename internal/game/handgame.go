// internal/game/handgame.go
package game

import "encoding/json"

const (
	Rock     = "rock"
	Paper    = "paper"
	Scissors = "scissors"
)

// beats maps each choice to the one it defeats.
var beats = map[string]string{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// RoundResult records a resolved round with both choices revealed.
type RoundResult struct {
	Round   int               `json:"round"`
	Choices map[string]string `json:"choices"`
	Winner  string            `json:"winner,omitempty"` // empty on a tied round
}

// HandGameState is a best-of-N rock/paper/scissors match between two players.
type HandGameState struct {
	Kind      Kind              `json:"kind"`
	Players   []string          `json:"players"`
	Round     int               `json:"round"`  // 1-based
	Rounds    int               `json:"rounds"` // N; the threshold is a majority of N
	Choices   map[string]string `json:"choices"`
	Scores    map[string]int    `json:"scores"`
	LastRound *RoundResult      `json:"lastRound,omitempty"`
}

func newHandGame(players []string, rounds int) *HandGameState {
	if rounds <= 0 {
		rounds = 3
	}
	scores := make(map[string]int, len(players))
	for _, p := range players {
		scores[p] = 0
	}
	return &HandGameState{
		Kind:    KindHandGame,
		Players: append([]string(nil), players...),
		Round:   1,
		Rounds:  rounds,
		Choices: map[string]string{},
		Scores:  scores,
	}
}

// Threshold is the majority of Rounds; reaching it wins the match.
func (s *HandGameState) Threshold() int {
	return s.Rounds/2 + 1
}

func (s *HandGameState) kind() Kind { return KindHandGame }

func (s *HandGameState) clone() State {
	c := *s
	c.Players = append([]string(nil), s.Players...)
	c.Choices = cloneStrings(s.Choices)
	c.Scores = cloneInts(s.Scores)
	if s.LastRound != nil {
		lr := *s.LastRound
		lr.Choices = cloneStrings(s.LastRound.Choices)
		c.LastRound = &lr
	}
	return &c
}

func (s *HandGameState) apply(actor string, move json.RawMessage) (Result, error) {
	if _, ok := s.Scores[actor]; !ok {
		return Result{}, ErrNotPlayer
	}
	var choice string
	if err := json.Unmarshal(move, &choice); err != nil {
		return Result{}, invalidMove("choice must be one of rock, paper, scissors")
	}
	if _, ok := beats[choice]; !ok {
		return Result{}, invalidMove("unrecognized choice %q", choice)
	}
	if _, chosen := s.Choices[actor]; chosen {
		return Result{}, invalidMove("already chose for round %d", s.Round)
	}

	next := s.clone().(*HandGameState)
	next.Choices[actor] = choice
	if len(next.Choices) < len(next.Players) {
		return Result{State: next}, nil
	}
	return next.resolveRound(), nil
}

// resolveRound scores the current round, clears the choices and either ends
// the match or advances the round counter. Only the majority threshold ends
// the match, so tied rounds can run past Rounds.
func (s *HandGameState) resolveRound() Result {
	a, b := s.Players[0], s.Players[1]
	ca, cb := s.Choices[a], s.Choices[b]

	var winner string
	switch {
	case beats[ca] == cb:
		winner = a
	case beats[cb] == ca:
		winner = b
	}
	if winner != "" {
		s.Scores[winner]++
	}
	s.LastRound = &RoundResult{Round: s.Round, Choices: s.Choices, Winner: winner}
	s.Choices = map[string]string{}

	if winner != "" && s.Scores[winner] >= s.Threshold() {
		return Result{State: s, GameOver: true, Winner: winner, Reason: ReasonWin}
	}
	s.Round++
	return Result{State: s}
}
