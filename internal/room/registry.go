// internal/room/registry.go
package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/arcade/internal/catalog"
	"github.com/jason-s-yu/arcade/internal/game"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// IDLength is the length of a room code.
const IDLength = 8

const maxIDAttempts = 16

// Registry creates, looks up and destroys rooms. It is not safe for
// concurrent use; the session hub is its single owner.
type Registry struct {
	store   Store
	catalog *catalog.Catalog
	logger  logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// NewRegistry returns a Registry over store that resolves games from cat.
func NewRegistry(store Store, cat *catalog.Catalog, logger logrus.FieldLogger) *Registry {
	return &Registry{
		store:   store,
		catalog: cat,
		logger:  logger,
		now:     time.Now,
		newID:   NewID,
	}
}

// NewID returns a short uppercase room code drawn from a random UUID.
func NewID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:IDLength])
}

// NormalizeID maps a user-typed room code onto its canonical form.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Catalog exposes the game table the registry validates against.
func (reg *Registry) Catalog() *catalog.Catalog {
	return reg.catalog
}

// Create opens a Waiting room with host as its only, not-ready player.
func (reg *Registry) Create(host, gameID string, isPrivate bool) (*Room, error) {
	rules, err := reg.catalog.Lookup(gameID)
	if err != nil {
		return nil, err
	}
	id, err := reg.freshID()
	if err != nil {
		return nil, err
	}
	r := &Room{
		ID:        id,
		GameID:    gameID,
		HostID:    host,
		Players:   []*Player{{ID: host}},
		State:     Waiting,
		IsPrivate: isPrivate,
		Config:    rules,
		CreatedAt: reg.now(),
	}
	reg.store.Put(r)
	reg.logger.WithFields(logrus.Fields{
		"room":    r.ID,
		"game":    gameID,
		"host":    host,
		"private": isPrivate,
	}).Info("room created")
	return r, nil
}

func (reg *Registry) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := reg.newID()
		if _, taken := reg.store.Get(id); !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a room id after %d attempts", maxIDAttempts)
}

// Get returns the room with the given code, case-insensitively.
func (reg *Registry) Get(id string) (*Room, error) {
	r, ok := reg.store.Get(NormalizeID(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}
	return r, nil
}

// Join seats identity in a Waiting room as a not-ready player.
func (reg *Registry) Join(id, identity string) (*Room, error) {
	r, err := reg.Get(id)
	if err != nil {
		return nil, err
	}
	switch {
	case r.State != Waiting:
		return nil, ErrGameInProgress
	case r.HasPlayer(identity):
		return nil, ErrAlreadyJoined
	case r.Full():
		return nil, ErrRoomFull
	}
	r.Players = append(r.Players, &Player{ID: identity})
	reg.logger.WithFields(logrus.Fields{"room": r.ID, "player": identity}).Debug("player joined")
	return r, nil
}

// SetReady updates identity's readiness and starts the game once every player
// is ready and quorum is met. It is a no-op for an identity not in the room.
func (reg *Registry) SetReady(id, identity string, ready bool) (r *Room, started bool, err error) {
	r, err = reg.Get(id)
	if err != nil {
		return nil, false, err
	}
	p, ok := r.player(identity)
	if !ok {
		return r, false, nil
	}
	if r.State != Waiting {
		return r, false, ErrGameInProgress
	}
	p.Ready = ready
	return reg.startIfReady(r)
}

// ReadyAll marks every player ready and starts the game if quorum is met.
func (reg *Registry) ReadyAll(id string) (r *Room, started bool, err error) {
	r, err = reg.Get(id)
	if err != nil {
		return nil, false, err
	}
	if r.State != Waiting {
		return r, false, ErrGameInProgress
	}
	for _, p := range r.Players {
		p.Ready = true
	}
	return reg.startIfReady(r)
}

func (reg *Registry) startIfReady(r *Room) (*Room, bool, error) {
	started, err := r.tryStart(reg.now())
	if err != nil {
		return r, false, err
	}
	if started {
		reg.logger.WithFields(logrus.Fields{
			"room":    r.ID,
			"game":    r.GameID,
			"players": r.PlayerIDs(),
		}).Info("game started")
	}
	return r, started, nil
}

// LeaveResult describes what a departure did to its room.
type LeaveResult struct {
	Room        *Room // the room after the departure, also set when Deleted
	Deleted     bool  // the room emptied and was removed
	HostChanged bool
	Forfeited   bool // a Playing room was force-finished
}

// Leave removes identity from the room. An emptied room is deleted; a Playing
// room is finished with the remaining players as winners.
func (reg *Registry) Leave(id, identity string) (LeaveResult, error) {
	r, err := reg.Get(id)
	if err != nil {
		return LeaveResult{}, err
	}
	if !r.HasPlayer(identity) {
		return LeaveResult{}, ErrNotInRoom
	}
	remaining := lo.Reject(r.Players, func(p *Player, _ int) bool { return p.ID == identity })
	res := LeaveResult{Room: r}
	log := reg.logger.WithFields(logrus.Fields{"room": r.ID, "player": identity})

	if len(remaining) == 0 {
		r.Players = remaining
		reg.store.Delete(r.ID)
		res.Deleted = true
		log.Info("room emptied and deleted")
		return res, nil
	}
	if r.State == Playing {
		winners := lo.Map(remaining, func(p *Player, _ int) string { return p.ID })
		// finish before the seat is dropped so the outcome keeps the full roster
		if err := r.finish(winners, game.ReasonOpponentLeft, reg.now()); err != nil {
			return LeaveResult{}, err
		}
		res.Forfeited = true
		log.Info("player left a running game; remaining players win")
	}
	r.Players = remaining
	if r.HostID == identity {
		r.HostID = r.Players[0].ID
		res.HostChanged = true
	}
	return res, nil
}

// FindOpen returns the oldest public Waiting room for gameID with a free seat.
func (reg *Registry) FindOpen(gameID string) (*Room, bool) {
	return lo.Find(reg.store.List(), func(r *Room) bool {
		return r.GameID == gameID && !r.IsPrivate && r.State == Waiting && !r.Full()
	})
}

// List returns every live room in creation order.
func (reg *Registry) List() []*Room {
	return reg.store.List()
}
