// internal/session/events.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/arcade/internal/game"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/jason-s-yu/arcade/internal/room"
	"github.com/sirupsen/logrus"
)

const verifyTimeout = 5 * time.Second

// hiddenMove replaces a hand-game choice in game:state until the round resolves.
var hiddenMove = json.RawMessage(`"hidden"`)

func (h *Hub) handleAuth(c *Conn, payload json.RawMessage) error {
	var p models.AuthPayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(h.ctx, verifyTimeout)
	defer cancel()
	if err := h.verifier.Verify(ctx, p.Identity, p.Token); err != nil {
		return err
	}

	// a newer connection for the same identity retires the older one
	if old, ok := h.dir.Lookup(p.Identity); ok && old != c {
		h.leaveCurrent(old, p.Identity)
		h.dir.Remove(old)
		old.Close(CloseSuperseded, "signed in from another connection")
		h.logger.WithFields(logrus.Fields{"identity": p.Identity, "old": old.ID, "new": c.ID}).Info("connection superseded")
	}
	// re-authenticating as someone else leaves the previous identity's room
	if prev, ok := h.dir.Identity(c); ok && prev != p.Identity {
		h.leaveCurrent(c, prev)
	}
	h.dir.Authenticate(c, p.Identity)

	h.logger.WithFields(logrus.Fields{"conn": c.ID, "identity": p.Identity, "online": h.dir.Online()}).Info("connection authenticated")
	c.Write(models.Message{Type: models.EventAuthSuccess, Payload: models.AuthSuccessPayload{Identity: p.Identity}})
	return nil
}

func (h *Hub) handleRoomCreate(c *Conn, identity string, payload json.RawMessage) error {
	var p models.RoomCreatePayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	if _, err := h.rooms.Catalog().Lookup(p.GameID); err != nil {
		return err
	}
	h.leaveCurrent(c, identity)
	r, err := h.rooms.Create(identity, p.GameID, p.IsPrivate)
	if err != nil {
		return err
	}
	h.dir.Bind(c, r.ID)
	c.Write(models.Message{Type: models.EventRoomCreated, Payload: models.RoomPayload{Room: r.View()}})
	return nil
}

func (h *Hub) handleRoomJoin(c *Conn, identity string, payload json.RawMessage) error {
	var p models.RoomJoinPayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	target := room.NormalizeID(p.RoomID)
	if current, ok := h.dir.ResolveRoom(c); ok && current == target {
		return room.ErrAlreadyJoined
	}
	// join first so a rejected join keeps the caller in its current room
	r, err := h.rooms.Join(target, identity)
	if err != nil {
		return err
	}
	h.leaveCurrent(c, identity)
	h.dir.Bind(c, r.ID)
	h.broadcast(r, models.Message{
		Type:    models.EventRoomPlayerJoined,
		Payload: models.RoomPlayerPayload{Room: r.View(), PlayerID: identity},
	}, nil)
	return nil
}

func (h *Hub) handleRoomLeave(c *Conn, identity string, _ json.RawMessage) error {
	h.leaveCurrent(c, identity)
	return nil
}

func (h *Hub) handleRoomReady(c *Conn, identity string, payload json.RawMessage) error {
	var p models.ReadyPayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	roomID, ok := h.dir.ResolveRoom(c)
	if !ok {
		return errNoRoom
	}
	r, started, err := h.rooms.SetReady(roomID, identity, p.Ready)
	if err != nil {
		return err
	}
	h.broadcast(r, models.Message{Type: models.EventRoomUpdated, Payload: models.RoomPayload{Room: r.View()}}, nil)
	if started {
		h.announceStart(r)
	}
	return nil
}

func (h *Hub) handleGameMove(c *Conn, identity string, payload json.RawMessage) error {
	var p models.MovePayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	r, err := h.currentRoom(c)
	if err != nil {
		return err
	}
	res, err := r.ApplyMove(identity, p.Move, h.now())
	if err != nil {
		return err
	}

	move := p.Move
	if game.KindOf(res.State) == game.KindHandGame {
		move = hiddenMove
	}
	h.broadcast(r, models.Message{
		Type: models.EventGameState,
		Payload: models.GameStatePayload{
			GameState:   game.Public(r.GameState),
			CurrentTurn: r.CurrentTurn,
			LastMove:    &models.LastMove{PlayerID: identity, Move: move},
		},
	}, nil)
	if res.GameOver {
		h.announceGameOver(r)
	}
	return nil
}

// handleGameUpdate relays opaque peer state to everyone but the sender.
func (h *Hub) handleGameUpdate(c *Conn, identity string, payload json.RawMessage) error {
	var p models.UpdatePayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	r, err := h.currentRoom(c)
	if err != nil {
		return err
	}
	if r.State != room.Playing {
		return room.ErrNotPlaying
	}
	h.broadcast(r, models.Message{
		Type:    models.EventGamePeerUpdate,
		Payload: models.PeerUpdatePayload{PlayerID: identity, State: p.State},
	}, c)
	return nil
}

func (h *Hub) handleCompetitionScore(c *Conn, identity string, payload json.RawMessage) error {
	var p models.ScorePayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	r, err := h.currentRoom(c)
	if err != nil {
		return err
	}
	if err := r.ReportScore(identity, p.Score); err != nil {
		return err
	}
	h.broadcast(r, models.Message{
		Type:    models.EventCompetitionOpponentScore,
		Payload: models.OpponentScorePayload{Score: p.Score, PlayerID: identity},
	}, c)
	return nil
}

func (h *Hub) handleCompetitionFinished(c *Conn, identity string, payload json.RawMessage) error {
	var p models.FinishedPayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	r, err := h.currentRoom(c)
	if err != nil {
		return err
	}
	res, err := r.ReportFinished(identity, p.FinalScore, h.now())
	if err != nil {
		return err
	}
	h.broadcast(r, models.Message{
		Type:    models.EventCompetitionOpponentFinished,
		Payload: models.OpponentScorePayload{Score: p.FinalScore, PlayerID: identity},
	}, c)
	if res.GameOver {
		h.announceGameOver(r)
	}
	return nil
}

func (h *Hub) handleMatchmakingFind(c *Conn, identity string, payload json.RawMessage) error {
	var p models.MatchFindPayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	if _, err := h.rooms.Catalog().Lookup(p.GameID); err != nil {
		return err
	}
	h.leaveCurrent(c, identity)
	m, err := h.matchmaker.FindMatch(identity, p.GameID)
	if err != nil {
		return err
	}
	h.dir.Bind(c, m.Room.ID)

	if m.Created {
		c.Write(models.Message{Type: models.EventMatchmakingWaiting, Payload: models.RoomPayload{Room: m.Room.View()}})
	} else {
		h.broadcast(m.Room, models.Message{
			Type:    models.EventRoomPlayerJoined,
			Payload: models.RoomPlayerPayload{Room: m.Room.View(), PlayerID: identity},
		}, nil)
	}
	if m.Started {
		h.announceStart(m.Room)
	}
	return nil
}

// handleInviteSend checks the friendship off the hub goroutine, then
// finishes on it.
func (h *Hub) handleInviteSend(c *Conn, identity string, payload json.RawMessage) error {
	var p models.InviteSendPayload
	if err := h.decode(payload, &p); err != nil {
		return err
	}
	if p.FriendID == identity {
		return fmt.Errorf("%w: cannot invite yourself", errInvalidPayload)
	}
	if _, err := h.rooms.Catalog().Lookup(p.GameID); err != nil {
		return err
	}
	if err := h.checkNotPlaying(c); err != nil {
		return err
	}
	if h.friends == nil {
		return h.deliverInvite(c, identity, p)
	}

	base := context.WithoutCancel(h.ctx)
	go func() {
		ctx, cancel := context.WithTimeout(base, verifyTimeout)
		defer cancel()
		ok, err := h.friends.AreFriends(ctx, identity, p.FriendID)
		h.enqueue(func() {
			// the sender may have disconnected or re-authenticated meanwhile
			if current, still := h.dir.Identity(c); !still || current != identity {
				return
			}
			switch {
			case err != nil:
				h.reportError(c, models.EventInviteSend, fmt.Errorf("friend lookup: %w", err))
			case !ok:
				h.reportError(c, models.EventInviteSend, errNotFriends)
			default:
				h.reportError(c, models.EventInviteSend, h.deliverInvite(c, identity, p))
			}
		})
	}()
	return nil
}

// deliverInvite sends invite:received when the friend is online. The invite
// targets the sender's Waiting room for the game if it has a free seat, or a
// new private room.
func (h *Hub) deliverInvite(c *Conn, identity string, p models.InviteSendPayload) error {
	// the room may have started while the friend lookup ran
	if err := h.checkNotPlaying(c); err != nil {
		return err
	}
	friend, online := h.dir.Lookup(p.FriendID)
	if !online {
		h.logger.WithFields(logrus.Fields{"from": identity, "to": p.FriendID}).Debug("invite target offline; not delivered")
		return nil
	}

	r, err := h.currentRoom(c)
	if err != nil || r.GameID != p.GameID || r.State != room.Waiting || r.Full() {
		h.leaveCurrent(c, identity)
		r, err = h.rooms.Create(identity, p.GameID, true)
		if err != nil {
			return err
		}
		h.dir.Bind(c, r.ID)
		c.Write(models.Message{Type: models.EventRoomCreated, Payload: models.RoomPayload{Room: r.View()}})
	}

	friend.Write(models.Message{
		Type:    models.EventInviteReceived,
		Payload: models.InviteReceivedPayload{FromUserID: identity, GameID: p.GameID, RoomID: r.ID},
	})
	return nil
}

// currentRoom resolves the room c is bound to.
// checkNotPlaying rejects actions that would forfeit the sender's running
// match.
func (h *Hub) checkNotPlaying(c *Conn) error {
	if r, err := h.currentRoom(c); err == nil && r.State == room.Playing {
		return room.ErrGameInProgress
	}
	return nil
}

func (h *Hub) currentRoom(c *Conn) (*room.Room, error) {
	roomID, ok := h.dir.ResolveRoom(c)
	if !ok {
		return nil, errNoRoom
	}
	return h.rooms.Get(roomID)
}

// leaveCurrent removes identity from c's room, if any, and notifies the
// remaining players.
func (h *Hub) leaveCurrent(c *Conn, identity string) {
	roomID, ok := h.dir.ResolveRoom(c)
	if !ok {
		return
	}
	h.dir.Unbind(c)
	res, err := h.rooms.Leave(roomID, identity)
	if err != nil {
		h.logger.WithFields(logrus.Fields{"room": roomID, "identity": identity}).WithError(err).Warn("leave failed")
		return
	}
	if res.Deleted {
		return
	}
	h.broadcast(res.Room, models.Message{
		Type:    models.EventRoomPlayerLeft,
		Payload: models.RoomPlayerPayload{Room: res.Room.View(), PlayerID: identity},
	}, nil)
	if res.Forfeited {
		h.announceGameOver(res.Room)
	}
}

func (h *Hub) announceStart(r *room.Room) {
	h.broadcast(r, models.Message{
		Type: models.EventGameStart,
		Payload: models.GameStartPayload{
			Room:               r.View(),
			GameState:          game.Public(r.GameState),
			CurrentTurn:        r.CurrentTurn,
			IsScoreCompetition: r.Config.ScoreCompetition,
			TimeLimit:          r.Config.TimeLimitSeconds,
		},
	}, nil)
}

// announceGameOver broadcasts the terminal result and hands the outcome to
// the sinks.
func (h *Hub) announceGameOver(r *room.Room) {
	o := r.Outcome
	if o == nil {
		return
	}
	payload := models.GameOverPayload{Reason: o.Reason}
	if o.Winner != "" {
		winner := o.Winner
		payload.Winner = &winner
		if len(o.Winners) > 1 {
			payload.Winners = o.Winners
		}
	}
	if r.Config.ScoreCompetition {
		payload.FinalScores = o.Scores
	} else {
		payload.FinalState = game.Public(r.GameState)
	}
	h.broadcast(r, models.Message{Type: models.EventGameOver, Payload: payload}, nil)

	h.logger.WithFields(logrus.Fields{
		"room":   r.ID,
		"game":   r.GameID,
		"winner": o.Winner,
		"reason": o.Reason,
	}).Info("game over")
	h.publishOutcome(*o)
}
