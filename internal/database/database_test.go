package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openOrSkip migrates and connects to DATABASE_URL, skipping when unset or
// unreachable.
func openOrSkip(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	logger, _ := test.NewNullLogger()
	require.NoError(t, Migrate(url, logger))
	// a second run is a no-op
	require.NoError(t, Migrate(url, logger))
	return pool
}

func TestRecordOutcome(t *testing.T) {
	pool := openOrSkip(t)
	ctx := context.Background()
	store := NewResultStore(pool)

	roomID := uuid.NewString()[:8]
	start := time.Now().UTC().Truncate(time.Second)
	o := models.MatchOutcome{
		RoomID:     roomID,
		GameID:     "snake",
		Players:    []string{"p1-" + roomID, "p2-" + roomID},
		Winner:     "p1-" + roomID,
		Winners:    []string{"p1-" + roomID},
		Reason:     "win",
		Scores:     map[string]int{"p1-" + roomID: 500, "p2-" + roomID: 300},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Minute),
	}
	require.NoError(t, store.RecordOutcome(ctx, o))

	var winner string
	var resultID int64
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT id, winner_id FROM match_results WHERE room_id=$1`, roomID).Scan(&resultID, &winner))
	assert.Equal(t, o.Winner, winner)

	rows, err := pool.Query(ctx,
		`SELECT player_id, seat, score, won FROM match_players WHERE result_id=$1 ORDER BY seat`, resultID)
	require.NoError(t, err)
	defer rows.Close()
	type seatRow struct {
		player string
		seat   int
		score  *int
		won    bool
	}
	var got []seatRow
	for rows.Next() {
		var r seatRow
		require.NoError(t, rows.Scan(&r.player, &r.seat, &r.score, &r.won))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)
	assert.True(t, got[0].won)
	assert.Equal(t, 500, *got[0].score)
	assert.False(t, got[1].won)
	assert.Equal(t, 1, got[1].seat)
}

func TestRecordDrawWithoutScores(t *testing.T) {
	pool := openOrSkip(t)
	ctx := context.Background()
	roomID := uuid.NewString()[:8]
	o := models.MatchOutcome{
		RoomID:     roomID,
		GameID:     "tic-tac-toe",
		Players:    []string{"a-" + roomID, "b-" + roomID},
		Reason:     "draw",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	require.NoError(t, NewResultStore(pool).RecordOutcome(ctx, o))

	var winner *string
	require.NoError(t, pool.QueryRow(ctx, `SELECT winner_id FROM match_results WHERE room_id=$1`, roomID).Scan(&winner))
	assert.Nil(t, winner)

	var nullScores int
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM match_players p JOIN match_results r ON r.id = p.result_id
		WHERE r.room_id=$1 AND p.score IS NULL AND NOT p.won`, roomID).Scan(&nullScores))
	assert.Equal(t, 2, nullScores)
}

// befriend writes a friends row the way the account API does.
func befriend(t *testing.T, pool *pgxpool.Pool, from, to, status string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO friends (user1_id, user2_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user1_id, user2_id)
		DO UPDATE SET status=EXCLUDED.status, updated_at=NOW()
	`, from, to, status)
	require.NoError(t, err)
}

func TestFriendStore(t *testing.T) {
	pool := openOrSkip(t)
	ctx := context.Background()
	friends := NewFriendStore(pool)
	suffix := uuid.NewString()[:8]
	alice, bob, carol := "alice-"+suffix, "bob-"+suffix, "carol-"+suffix

	befriend(t, pool, alice, bob, "pending")
	ok, err := friends.AreFriends(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, ok, "pending requests do not count")

	befriend(t, pool, alice, bob, models.FriendStatusAccepted)
	for _, pair := range [][2]string{{alice, bob}, {bob, alice}} {
		ok, err := friends.AreFriends(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok, "%s -> %s", pair[0], pair[1])
	}

	ok, err = friends.AreFriends(ctx, alice, carol)
	require.NoError(t, err)
	assert.False(t, ok)
}
