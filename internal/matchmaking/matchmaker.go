// internal/matchmaking/matchmaker.go
package matchmaking

import (
	"github.com/jason-s-yu/arcade/internal/room"
	"github.com/sirupsen/logrus"
)

// Match is the result of a matchmaking request.
type Match struct {
	Room    *room.Room
	Created bool // no open room existed; the requester is waiting alone
	Started bool // the requester filled the quorum and the game began
}

// Matchmaker pairs anonymous players into public rooms, reusing the oldest
// open room before creating a new one. Like the registry it wraps, it is
// owned by the session hub and is not safe for concurrent use.
type Matchmaker struct {
	rooms  *room.Registry
	logger logrus.FieldLogger
}

func New(rooms *room.Registry, logger logrus.FieldLogger) *Matchmaker {
	return &Matchmaker{rooms: rooms, logger: logger}
}

// FindMatch seats identity in a public Waiting room for gameID. The caller
// must already have removed identity from any room it occupied.
//
// Public rooms skip manual readiness: the requester is marked ready, and once
// the room reaches its minimum player count every occupant is marked ready,
// which starts the game.
func (m *Matchmaker) FindMatch(identity, gameID string) (Match, error) {
	if _, err := m.rooms.Catalog().Lookup(gameID); err != nil {
		return Match{}, err
	}

	open, ok := m.rooms.FindOpen(gameID)
	if !ok {
		r, err := m.rooms.Create(identity, gameID, false)
		if err != nil {
			return Match{}, err
		}
		r, started, err := m.rooms.SetReady(r.ID, identity, true)
		if err != nil {
			return Match{}, err
		}
		m.logger.WithFields(logrus.Fields{"room": r.ID, "game": gameID, "player": identity}).
			Debug("matchmaking: no open room, waiting in a new one")
		return Match{Room: r, Created: true, Started: started}, nil
	}

	r, err := m.rooms.Join(open.ID, identity)
	if err != nil {
		return Match{}, err
	}
	if len(r.Players) < r.Config.MinPlayers {
		r, started, err := m.rooms.SetReady(r.ID, identity, true)
		if err != nil {
			return Match{}, err
		}
		return Match{Room: r, Started: started}, nil
	}
	r, started, err := m.rooms.ReadyAll(r.ID)
	if err != nil {
		return Match{}, err
	}
	m.logger.WithFields(logrus.Fields{"room": r.ID, "game": gameID, "players": r.PlayerIDs()}).
		Info("matchmaking: quorum reached")
	return Match{Room: r, Started: started}, nil
}
