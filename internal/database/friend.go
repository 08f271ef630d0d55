// internal/database/friend.go

package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/arcade/internal/models"
)

// FriendStore reads the friends table maintained by the account API. Rows are
// directional (user1 requested user2) but an accepted row counts both ways.
// The match server never writes friendships.
type FriendStore struct {
	pool *pgxpool.Pool
}

func NewFriendStore(pool *pgxpool.Pool) *FriendStore {
	return &FriendStore{pool: pool}
}

// AreFriends reports whether a and b share an accepted friendship.
func (s *FriendStore) AreFriends(ctx context.Context, a, b string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE status = $3
			  AND ((user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1))
		)
	`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, a, b, models.FriendStatusAccepted).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return ok, nil
}
