// internal/session/hub.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jason-s-yu/arcade/internal/auth"
	"github.com/jason-s-yu/arcade/internal/matchmaking"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/jason-s-yu/arcade/internal/room"
	"github.com/sirupsen/logrus"
)

// OutcomeSink receives finalized match outcomes. Sinks run off the hub
// goroutine; a failing sink is logged and never affects the room.
type OutcomeSink interface {
	RecordOutcome(ctx context.Context, outcome models.MatchOutcome) error
}

// FriendChecker answers whether two identities may invite each other.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

// handlerFunc handles one inbound event for an authenticated connection.
type handlerFunc func(c *Conn, identity string, payload json.RawMessage) error

// Options configures a Hub. Zero values are usable: identities are accepted
// unverified, invites skip the friendship check and outcomes are dropped.
type Options struct {
	Logger      logrus.FieldLogger
	Verifier    auth.Verifier
	Friends     FriendChecker
	Sinks       []OutcomeSink
	InboxSize   int
	SinkTimeout time.Duration
}

// Hub is the single worker that owns every room and connection binding.
// Read pumps hand it events through Dispatch and Disconnect; all state
// changes happen on the goroutine running Run, so no room is ever mutated
// by two events at once.
type Hub struct {
	logger     logrus.FieldLogger
	verifier   auth.Verifier
	friends    FriendChecker
	sinks      []OutcomeSink
	rooms      *room.Registry
	matchmaker *matchmaking.Matchmaker
	dir        *Directory
	handlers   map[string]handlerFunc
	validate   *validator.Validate

	inbox       chan func()
	stopped     chan struct{}
	ctx         context.Context
	sinkTimeout time.Duration
	sinkWG      sync.WaitGroup
	now         func() time.Time
}

// NewHub returns a hub over rooms. Call Run to start processing.
func NewHub(rooms *room.Registry, opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Verifier == nil {
		opts.Verifier = auth.AdvisoryVerifier{Logger: opts.Logger}
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 256
	}
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = 5 * time.Second
	}
	h := &Hub{
		logger:      opts.Logger,
		verifier:    opts.Verifier,
		friends:     opts.Friends,
		sinks:       opts.Sinks,
		rooms:       rooms,
		matchmaker:  matchmaking.New(rooms, opts.Logger),
		dir:         NewDirectory(),
		validate:    validator.New(),
		inbox:       make(chan func(), opts.InboxSize),
		stopped:     make(chan struct{}),
		ctx:         context.Background(),
		sinkTimeout: opts.SinkTimeout,
		now:         time.Now,
	}
	h.setupEventHandlers()
	return h
}

func (h *Hub) setupEventHandlers() {
	h.handlers = map[string]handlerFunc{
		models.EventRoomCreate:          h.handleRoomCreate,
		models.EventRoomJoin:            h.handleRoomJoin,
		models.EventRoomLeave:           h.handleRoomLeave,
		models.EventRoomReady:           h.handleRoomReady,
		models.EventGameMove:            h.handleGameMove,
		models.EventGameUpdate:          h.handleGameUpdate,
		models.EventCompetitionScore:    h.handleCompetitionScore,
		models.EventCompetitionFinished: h.handleCompetitionFinished,
		models.EventMatchmakingFind:     h.handleMatchmakingFind,
		models.EventMatchmakingCancel:   h.handleRoomLeave,
		models.EventInviteSend:          h.handleInviteSend,
	}
}

// Run processes events until ctx is cancelled. Every connection still open
// at that point is asked to close.
func (h *Hub) Run(ctx context.Context) error {
	h.ctx = ctx
	defer close(h.stopped)
	h.logger.Info("session hub started")
	for {
		select {
		case <-ctx.Done():
			for c := range h.dir.identities {
				c.Close(CloseShutdown, "server shutting down")
			}
			h.logger.Info("session hub stopped")
			return ctx.Err()
		case fn := <-h.inbox:
			fn()
		}
	}
}

// Wait blocks until every in-flight outcome sink call has returned.
func (h *Hub) Wait() {
	h.sinkWG.Wait()
}

// enqueue hands fn to the hub goroutine. It reports false once the hub has
// stopped.
func (h *Hub) enqueue(fn func()) bool {
	select {
	case <-h.stopped:
		return false
	default:
	}
	select {
	case h.inbox <- fn:
		return true
	case <-h.stopped:
		return false
	}
}

// Dispatch decodes a client frame and queues it for the hub. Frames from one
// connection are handled in the order Dispatch is called.
func (h *Hub) Dispatch(c *Conn, data []byte) {
	var in models.Inbound
	if err := json.Unmarshal(data, &in); err != nil || in.Type == "" {
		c.WriteError(models.CodeInvalidPayload, "frames must be JSON objects with a type")
		return
	}
	h.enqueue(func() { h.handle(c, in) })
}

// Disconnect is called by the transport once the connection is gone. It is
// treated exactly like leaving the current room.
func (h *Hub) Disconnect(c *Conn) {
	h.enqueue(func() {
		identity, ok := h.dir.Identity(c)
		if ok {
			h.leaveCurrent(c, identity)
			h.logger.WithFields(logrus.Fields{"conn": c.ID, "identity": identity}).Info("connection closed")
		}
		h.dir.Remove(c)
		c.Close(CloseNormal, "disconnected")
	})
}

// Rooms returns a snapshot of every live room, read on the hub goroutine.
func (h *Hub) Rooms(ctx context.Context) ([]models.RoomView, error) {
	reply := make(chan []models.RoomView, 1)
	if !h.enqueue(func() {
		rooms := h.rooms.List()
		views := make([]models.RoomView, 0, len(rooms))
		for _, r := range rooms {
			views = append(views, r.View())
		}
		reply <- views
	}) {
		return nil, errors.New("session hub is not running")
	}
	select {
	case views := <-reply:
		return views, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handle runs on the hub goroutine.
func (h *Hub) handle(c *Conn, in models.Inbound) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.WithFields(logrus.Fields{
				"conn":  c.ID,
				"type":  in.Type,
				"panic": rec,
				"stack": string(debug.Stack()),
			}).Error("event handler panicked")
			c.WriteError(models.CodeServerError, "internal server error")
		}
	}()

	if in.Type == models.EventAuth {
		h.reportError(c, in.Type, h.handleAuth(c, in.Payload))
		return
	}
	handler, ok := h.handlers[in.Type]
	if !ok {
		c.WriteError(models.CodeInvalidPayload, fmt.Sprintf("unknown event type: %s", in.Type))
		return
	}
	identity, ok := h.dir.Identity(c)
	if !ok {
		h.reportError(c, in.Type, errNotAuthenticated)
		return
	}
	h.reportError(c, in.Type, handler(c, identity, in.Payload))
}

// reportError sends err to the originating connection only.
func (h *Hub) reportError(c *Conn, eventType string, err error) {
	if err == nil {
		return
	}
	code := errorCode(err)
	if code == models.CodeServerError {
		h.logger.WithFields(logrus.Fields{"conn": c.ID, "type": eventType}).WithError(err).Error("event failed")
		c.WriteError(code, "internal server error")
		return
	}
	h.logger.WithFields(logrus.Fields{"conn": c.ID, "type": eventType, "code": code}).Debug(err.Error())
	c.WriteError(code, err.Error())
}

// decode unmarshals and validates an event payload into dst.
func (h *Hub) decode(payload json.RawMessage, dst any) error {
	if len(payload) == 0 || string(payload) == "null" {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}

// broadcast writes msg to every connected member of r except skip.
func (h *Hub) broadcast(r *room.Room, msg models.Message, skip *Conn) {
	for _, id := range r.PlayerIDs() {
		c, ok := h.dir.Lookup(id)
		if !ok || c == skip {
			continue
		}
		c.Write(msg)
	}
}

// publishOutcome hands a finished room's outcome to every sink.
func (h *Hub) publishOutcome(o models.MatchOutcome) {
	base := context.WithoutCancel(h.ctx)
	for _, sink := range h.sinks {
		h.sinkWG.Add(1)
		go func(sink OutcomeSink) {
			defer h.sinkWG.Done()
			ctx, cancel := context.WithTimeout(base, h.sinkTimeout)
			defer cancel()
			if err := sink.RecordOutcome(ctx, o); err != nil {
				h.logger.WithFields(logrus.Fields{
					"room": o.RoomID,
					"sink": fmt.Sprintf("%T", sink),
				}).WithError(err).Warn("failed to record match outcome")
			}
		}(sink)
	}
}
