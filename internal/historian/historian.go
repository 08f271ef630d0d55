// internal/historian/historian.go
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Recorder persists one match outcome.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome models.MatchOutcome) error
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Queue      string
	DeadLetter string        // defaults to Queue + ":dead"
	PopTimeout time.Duration // BLPop block time; bounds how long shutdown waits
	RetryDelay time.Duration // pause after a Redis error
	Logger     logrus.FieldLogger
}

// Service drains the match outcome queue into a Recorder. Payloads that cannot
// be decoded or recorded are moved to the dead-letter list so the queue keeps
// flowing.
type Service struct {
	rdb        redis.Cmdable
	store      Recorder
	queue      string
	deadLetter string
	popTimeout time.Duration
	retryDelay time.Duration
	logger     logrus.FieldLogger
}

func New(rdb redis.Cmdable, store Recorder, opts Options) *Service {
	if opts.Queue == "" {
		opts.Queue = "arcade_match_results"
	}
	if opts.DeadLetter == "" {
		opts.DeadLetter = opts.Queue + ":dead"
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 3 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Service{
		rdb:        rdb,
		store:      store,
		queue:      opts.Queue,
		deadLetter: opts.DeadLetter,
		popTimeout: opts.PopTimeout,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
	}
}

// Run pops outcomes until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.WithField("queue", s.queue).Info("historian started")
	defer s.logger.Info("historian stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := s.rdb.BLPop(ctx, s.popTimeout, s.queue).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case ctx.Err() != nil:
			return nil
		case err != nil:
			s.logger.WithError(err).Error("BLPop failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(s.retryDelay):
			}
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		if len(res) < 2 {
			continue
		}
		s.process(ctx, res[1])
	}
}

// process records one payload, dead-lettering it on failure.
func (s *Service) process(ctx context.Context, payload string) {
	var outcome models.MatchOutcome
	if err := json.Unmarshal([]byte(payload), &outcome); err != nil {
		s.deadLetterPayload(ctx, payload, fmt.Errorf("invalid outcome record: %w", err))
		return
	}
	if err := s.store.RecordOutcome(ctx, outcome); err != nil {
		s.deadLetterPayload(ctx, payload, err)
		return
	}
	s.logger.WithFields(logrus.Fields{"room": outcome.RoomID, "game": outcome.GameID}).Debug("outcome recorded")
}

func (s *Service) deadLetterPayload(ctx context.Context, payload string, cause error) {
	entry := s.logger.WithField("dead_letter", s.deadLetter).WithError(cause)
	// the payload is moved even if ctx was cancelled mid-record
	if err := s.rdb.RPush(context.WithoutCancel(ctx), s.deadLetter, payload).Err(); err != nil {
		entry.WithField("payload", payload).Errorf("failed to dead-letter outcome: %v", err)
		return
	}
	entry.Warn("outcome moved to dead-letter list")
}
