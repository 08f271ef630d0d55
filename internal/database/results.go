// internal/database/results.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/samber/lo"
)

// ResultStore persists finalized match outcomes.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// RecordOutcome writes one match_results row plus a match_players row per
// seat, in a single transaction.
func (s *ResultStore) RecordOutcome(ctx context.Context, o models.MatchOutcome) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var winner *string
		if o.Winner != "" {
			winner = &o.Winner
		}

		insertResult := `
			INSERT INTO match_results (room_id, game_id, reason, winner_id, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		var resultID int64
		if err := tx.QueryRow(ctx, insertResult, o.RoomID, o.GameID, o.Reason, winner, o.StartedAt, o.FinishedAt).Scan(&resultID); err != nil {
			return err
		}

		insertPlayer := `
			INSERT INTO match_players (result_id, player_id, seat, score, won)
			VALUES ($1, $2, $3, $4, $5)
		`
		for seat, playerID := range o.Players {
			var score *int
			if v, ok := o.Scores[playerID]; ok {
				score = &v
			}
			won := playerID == o.Winner || lo.Contains(o.Winners, playerID)
			if _, err := tx.Exec(ctx, insertPlayer, resultID, playerID, seat, score, won); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record outcome for room %s: %w", o.RoomID, err)
	}
	return nil
}
