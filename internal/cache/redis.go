// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) finalized match outcomes are pushed to.
const DefaultQueueName = "arcade_match_results"

// Connect opens a Redis client and checks that the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// OutcomePublisher pushes each finalized match outcome onto a Redis list for
// downstream consumers (rating, history).
type OutcomePublisher struct {
	rdb   redis.Cmdable
	queue string
}

func NewOutcomePublisher(rdb redis.Cmdable, queue string) *OutcomePublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &OutcomePublisher{rdb: rdb, queue: queue}
}

// RecordOutcome serializes the outcome to JSON, then pushes it to the queue.
func (p *OutcomePublisher) RecordOutcome(ctx context.Context, outcome models.MatchOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal match outcome: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
