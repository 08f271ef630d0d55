package models

import "encoding/json"

// Inbound is a client frame; Payload is decoded by the handler registered for Type.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Message is a server frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client -> server events.
const (
	EventAuth                = "auth"
	EventRoomCreate          = "room:create"
	EventRoomJoin            = "room:join"
	EventRoomLeave           = "room:leave"
	EventRoomReady           = "room:ready"
	EventGameMove            = "game:move"
	EventGameUpdate          = "game:update"
	EventCompetitionScore    = "competition:score"
	EventCompetitionFinished = "competition:finished"
	EventMatchmakingFind     = "matchmaking:find"
	EventMatchmakingCancel   = "matchmaking:cancel"
	EventInviteSend          = "invite:send"
)

// Server -> client events.
const (
	EventAuthSuccess                 = "auth:success"
	EventRoomCreated                 = "room:created"
	EventRoomPlayerJoined            = "room:playerJoined"
	EventRoomPlayerLeft              = "room:playerLeft"
	EventRoomUpdated                 = "room:updated"
	EventGameStart                   = "game:start"
	EventGameState                   = "game:state"
	EventGamePeerUpdate              = "game:peerUpdate"
	EventGameOver                    = "game:over"
	EventCompetitionOpponentScore    = "competition:opponentScore"
	EventCompetitionOpponentFinished = "competition:opponentFinished"
	EventMatchmakingWaiting          = "matchmaking:waiting"
	EventInviteReceived              = "invite:received"
	EventError                       = "error"
)

// Error codes carried in an error frame.
const (
	CodeNotAuthenticated      = "NotAuthenticated"
	CodeUnauthorized          = "Unauthorized"
	CodeUnknownGame           = "UnknownGame"
	CodeRoomNotFound          = "RoomNotFound"
	CodeRoomFull              = "RoomFull"
	CodeGameAlreadyInProgress = "GameAlreadyInProgress"
	CodeAlreadyJoined         = "AlreadyJoined"
	CodeNotYourTurn           = "NotYourTurn"
	CodeInvalidMove           = "InvalidMove"
	CodeGameNotInProgress     = "GameNotInProgress"
	CodeInvalidPayload        = "InvalidPayload"
	CodeServerError           = "ServerError"
)
