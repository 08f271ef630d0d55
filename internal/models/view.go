package models

import (
	"encoding/json"
	"time"
)

// PlayerView is a seat as seen by clients.
type PlayerView struct {
	ID    string `json:"id"`
	Ready bool   `json:"ready"`
}

// RoomView is the wire form of a room. GameState is already redacted for
// broadcast.
type RoomView struct {
	ID          string       `json:"id"`
	GameID      string       `json:"gameId"`
	HostID      string       `json:"hostId"`
	Players     []PlayerView `json:"players"`
	State       string       `json:"state"`
	IsPrivate   bool         `json:"isPrivate"`
	GameState   any          `json:"gameState"`
	CurrentTurn string       `json:"currentTurn,omitempty"`
	Config      any          `json:"config"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type AuthSuccessPayload struct {
	Identity string `json:"identity"`
}

// RoomPayload is used by room:created, room:updated and matchmaking:waiting.
type RoomPayload struct {
	Room RoomView `json:"room"`
}

// RoomPlayerPayload is used by room:playerJoined and room:playerLeft.
type RoomPlayerPayload struct {
	Room     RoomView `json:"room"`
	PlayerID string   `json:"playerId"`
}

type GameStartPayload struct {
	Room               RoomView `json:"room"`
	GameState          any      `json:"gameState"`
	CurrentTurn        string   `json:"currentTurn,omitempty"`
	IsScoreCompetition bool     `json:"isScoreCompetition"`
	TimeLimit          int      `json:"timeLimit,omitempty"`
}

type LastMove struct {
	PlayerID string          `json:"playerId"`
	Move     json.RawMessage `json:"move"`
}

type GameStatePayload struct {
	GameState   any       `json:"gameState"`
	CurrentTurn string    `json:"currentTurn,omitempty"`
	LastMove    *LastMove `json:"lastMove"`
}

type PeerUpdatePayload struct {
	PlayerID string          `json:"playerId"`
	State    json.RawMessage `json:"state"`
}

// GameOverPayload carries finalState for rule-driven games and finalScores for
// score competitions. Winner is null on a draw.
type GameOverPayload struct {
	Winner      *string        `json:"winner"`
	Winners     []string       `json:"winners,omitempty"`
	Reason      string         `json:"reason"`
	FinalState  any            `json:"finalState,omitempty"`
	FinalScores map[string]int `json:"finalScores,omitempty"`
}

// OpponentScorePayload is used by both competition relays.
type OpponentScorePayload struct {
	Score    int    `json:"score"`
	PlayerID string `json:"playerId"`
}

type InviteReceivedPayload struct {
	FromUserID string `json:"fromUserId"`
	GameID     string `json:"gameId"`
	RoomID     string `json:"roomId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
