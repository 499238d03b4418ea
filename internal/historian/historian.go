// Package historian drains the game action queue from Redis into PostgreSQL
// and marks games abandoned once their log goes quiet.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lotpoker/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Queue is the subset of *redis.Client the historian reads from.
type Queue interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Sink persists action batches. *database.Store satisfies it.
type Sink interface {
	InsertActions(ctx context.Context, batch []cache.GameActionRecord) error
	MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Options tune batching and abandonment.
type Options struct {
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration // a game with no actions for this long is abandoned
}

// Service encapsulates the Redis + DB logic for capturing game actions.
type Service struct {
	queue  Queue
	sink   Sink
	opts   Options
	logger *logrus.Entry

	lastActivity sync.Map // uuid.UUID -> time.Time

	batchMu sync.Mutex
	batch   []cache.GameActionRecord
}

// NewService builds a historian over queue and sink.
func NewService(queue Queue, sink Sink, opts Options, logger *logrus.Logger) *Service {
	if opts.QueueName == "" {
		opts.QueueName = cache.DefaultQueueName
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = 10 * time.Minute
	}
	return &Service{
		queue:  queue,
		sink:   sink,
		opts:   opts,
		logger: logger.WithField("service", "historian"),
		batch:  make([]cache.GameActionRecord, 0, opts.BatchSize),
	}
}

// Run pops records until ctx ends, then flushes what is left.
func (hs *Service) Run(ctx context.Context) {
	hs.logger.Infof("started, reading %s", hs.opts.QueueName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hs.inactivityLoop(ctx)
	}()

	hs.readLoop(ctx)
	wg.Wait()

	// ctx is done; the final flush gets its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs.flush(flushCtx)
	hs.logger.Info("shut down")
}

// readLoop uses BLPop to retrieve messages, flushing at least every FlushDelay.
func (hs *Service) readLoop(ctx context.Context) {
	lastFlush := time.Now()
	for ctx.Err() == nil {
		res, err := hs.queue.BLPop(ctx, hs.opts.FlushDelay, hs.opts.QueueName).Result()
		switch {
		case err == nil && len(res) == 2:
			// res[0] is the queue name and res[1] the payload.
			hs.handlePayload(ctx, res[1])
		case err == nil, errors.Is(err, redis.Nil):
		case ctx.Err() != nil:
			return
		default:
			hs.logger.Errorf("BLPop: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}

		if time.Since(lastFlush) >= hs.opts.FlushDelay {
			hs.flush(ctx)
			lastFlush = time.Now()
		}
	}
}

func (hs *Service) handlePayload(ctx context.Context, payload string) {
	var record cache.GameActionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		hs.logger.Warnf("invalid action record: %v", err)
		return
	}
	hs.lastActivity.Store(record.GameID, time.Now())
	hs.appendToBatch(ctx, record)
}

// appendToBatch adds a record and flushes once the batch is full.
func (hs *Service) appendToBatch(ctx context.Context, record cache.GameActionRecord) {
	hs.batchMu.Lock()
	hs.batch = append(hs.batch, record)
	full := len(hs.batch) >= hs.opts.BatchSize
	hs.batchMu.Unlock()

	if full {
		hs.flush(ctx)
	}
}

// flush writes the pending batch in one transaction. A failed batch is
// kept and retried on the next flush.
func (hs *Service) flush(ctx context.Context) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	if len(hs.batch) == 0 {
		return
	}
	if err := hs.sink.InsertActions(ctx, hs.batch); err != nil {
		hs.logger.Errorf("flushing %d actions: %v", len(hs.batch), err)
		return
	}
	hs.logger.Debugf("flushed %d actions", len(hs.batch))
	hs.batch = hs.batch[:0]
}

// Pending returns the number of records waiting to be flushed.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

// inactivityLoop periodically marks quiet games abandoned.
func (hs *Service) inactivityLoop(ctx context.Context) {
	interval := hs.opts.Inactivity / 10
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			hs.sweepInactive(ctx, now)
		}
	}
}

// sweepInactive marks every game idle past the threshold as abandoned.
func (hs *Service) sweepInactive(ctx context.Context, now time.Time) {
	hs.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.opts.Inactivity {
			return true
		}
		// flush first so the game's rows exist and a pending game_end wins
		hs.flush(ctx)
		changed, err := hs.sink.MarkGameAbandoned(ctx, gameID)
		if err != nil {
			hs.logger.Errorf("%v", err)
			return true
		}
		if changed {
			hs.logger.Infof("marked game %v abandoned after %s idle", gameID, now.Sub(last).Round(time.Second))
		}
		hs.lastActivity.Delete(gameID)
		return true
	})
}
