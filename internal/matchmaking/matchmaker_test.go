// internal/matchmaking/matchmaker_test.go
package matchmaking

import (
	"testing"

	"github.com/jason-s-yu/arcade/internal/catalog"
	"github.com/jason-s-yu/arcade/internal/room"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, games ...catalog.Rules) (*Matchmaker, *room.Registry) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cat := catalog.Default()
	if len(games) > 0 {
		var err error
		cat, err = catalog.New(games...)
		require.NoError(t, err)
	}
	reg := room.NewRegistry(room.NewMemoryStore(), cat, logger)
	return New(reg, logger), reg
}

func TestFindMatchCreatesThenFills(t *testing.T) {
	mm, _ := setup(t)

	first, err := mm.FindMatch("alice", "tic-tac-toe")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.False(t, first.Started)
	assert.False(t, first.Room.IsPrivate)
	assert.True(t, first.Room.Players[0].Ready)
	assert.Equal(t, room.Waiting, first.Room.State)

	second, err := mm.FindMatch("bob", "tic-tac-toe")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.True(t, second.Started)
	assert.Equal(t, first.Room.ID, second.Room.ID)
	assert.Equal(t, room.Playing, second.Room.State)
	assert.Equal(t, []string{"alice", "bob"}, second.Room.PlayerIDs())
	assert.Equal(t, "alice", second.Room.CurrentTurn)
}

func TestFindMatchSkipsPrivateAndOtherGames(t *testing.T) {
	mm, reg := setup(t)
	_, err := reg.Create("host", "snake", true)
	require.NoError(t, err)
	_, err = mm.FindMatch("x", "pong")
	require.NoError(t, err)

	m, err := mm.FindMatch("y", "snake")
	require.NoError(t, err)
	assert.True(t, m.Created)
	assert.Len(t, reg.List(), 3)
}

func TestFindMatchUnknownGame(t *testing.T) {
	mm, reg := setup(t)
	_, err := mm.FindMatch("x", "chess")
	assert.ErrorIs(t, err, catalog.ErrUnknownGame)
	assert.Empty(t, reg.List())
}

func TestFindMatchWaitsForLargerQuorum(t *testing.T) {
	mm, _ := setup(t, catalog.Rules{ID: "party", MinPlayers: 3, MaxPlayers: 4})

	_, err := mm.FindMatch("a", "party")
	require.NoError(t, err)
	m, err := mm.FindMatch("b", "party")
	require.NoError(t, err)
	assert.False(t, m.Started)
	assert.Len(t, m.Room.Players, 2)

	m, err = mm.FindMatch("c", "party")
	require.NoError(t, err)
	assert.True(t, m.Started)
	for _, p := range m.Room.Players {
		assert.True(t, p.Ready, p.ID)
	}
}
