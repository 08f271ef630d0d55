package models

import "encoding/json"

type AuthPayload struct {
	Identity string `json:"identity" validate:"required,max=128"`
	Token    string `json:"token"`
}

type RoomCreatePayload struct {
	GameID    string `json:"gameId" validate:"required"`
	IsPrivate bool   `json:"isPrivate"`
}

type RoomJoinPayload struct {
	RoomID string `json:"roomId" validate:"required,alphanum"`
}

type ReadyPayload struct {
	Ready bool `json:"ready"`
}

// MovePayload carries a game-specific move: a cell or column number, or a
// hand-game choice.
type MovePayload struct {
	Move json.RawMessage `json:"move" validate:"required"`
}

// UpdatePayload is relayed verbatim to the other players of a freeform game.
type UpdatePayload struct {
	State json.RawMessage `json:"state" validate:"required"`
}

type ScorePayload struct {
	Score int `json:"score"`
}

type FinishedPayload struct {
	FinalScore int `json:"finalScore"`
}

type MatchFindPayload struct {
	GameID string `json:"gameId" validate:"required"`
}

type InviteSendPayload struct {
	FriendID string `json:"friendId" validate:"required"`
	GameID   string `json:"gameId" validate:"required"`
}
