package models

import "time"

// MatchOutcome is the finalized result of a match, handed to persistence and
// queue collaborators once a room reaches Finished.
type MatchOutcome struct {
	RoomID     string         `json:"roomId"`
	GameID     string         `json:"gameId"`
	Players    []string       `json:"players"`
	Winner     string         `json:"winner,omitempty"` // empty on a draw
	Winners    []string       `json:"winners,omitempty"`
	Reason     string         `json:"reason"`
	Scores     map[string]int `json:"scores,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Draw reports whether the match ended without a winner.
func (o MatchOutcome) Draw() bool {
	return o.Winner == "" && len(o.Winners) == 0
}
