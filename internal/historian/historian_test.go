package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lotpoker/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue serves queued payloads, then reports an empty queue.
type fakeQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *fakeQueue) push(t *testing.T, rec cache.GameActionRecord) {
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, string(data))
}

func (q *fakeQueue) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	q.mu.Lock()
	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()
		return redis.NewStringSliceResult([]string{keys[0], item}, nil)
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return redis.NewStringSliceResult(nil, ctx.Err())
	case <-time.After(5 * time.Millisecond):
		return redis.NewStringSliceResult(nil, redis.Nil)
	}
}

type fakeSink struct {
	mu        sync.Mutex
	batches   [][]cache.GameActionRecord
	abandoned []uuid.UUID
	failNext  bool
}

func (s *fakeSink) InsertActions(ctx context.Context, batch []cache.GameActionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return errors.New("db down")
	}
	s.batches = append(s.batches, append([]cache.GameActionRecord(nil), batch...))
	return nil
}

func (s *fakeSink) MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandoned = append(s.abandoned, gameID)
	return true, nil
}

func (s *fakeSink) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func record(gameID uuid.UUID, idx int) cache.GameActionRecord {
	return cache.GameActionRecord{GameID: gameID, ActionIndex: idx, ActionType: "bid_submitted", Timestamp: time.Now().UnixMilli()}
}

func TestBatchFlushesWhenFull(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sink := &fakeSink{}
	hs := NewService(&fakeQueue{}, sink, Options{BatchSize: 3, FlushDelay: time.Hour}, logger)

	ctx := context.Background()
	gameID := uuid.New()
	hs.appendToBatch(ctx, record(gameID, 1))
	hs.appendToBatch(ctx, record(gameID, 2))
	assert.Equal(t, 0, sink.stored())
	hs.appendToBatch(ctx, record(gameID, 3))

	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 3)
	assert.Equal(t, 0, hs.Pending())
}

func TestFailedFlushIsRetried(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sink := &fakeSink{failNext: true}
	hs := NewService(&fakeQueue{}, sink, Options{BatchSize: 1}, logger)

	ctx := context.Background()
	hs.appendToBatch(ctx, record(uuid.New(), 1))
	assert.Equal(t, 1, hs.Pending())

	hs.flush(ctx)
	assert.Equal(t, 0, hs.Pending())
	assert.Equal(t, 1, sink.stored())
}

func TestRunDrainsQueue(t *testing.T) {
	logger, _ := test.NewNullLogger()
	q := &fakeQueue{}
	sink := &fakeSink{}
	gameID := uuid.New()
	for i := 1; i <= 5; i++ {
		q.push(t, record(gameID, i))
	}
	q.mu.Lock()
	q.items = append(q.items, "not json")
	q.mu.Unlock()

	hs := NewService(q, sink, Options{BatchSize: 2, FlushDelay: 20 * time.Millisecond, Inactivity: time.Hour}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hs.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sink.stored() == 5 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, 5, sink.stored())
}

func TestSweepMarksIdleGamesAbandoned(t *testing.T) {
	logger, _ := test.NewNullLogger()
	sink := &fakeSink{}
	hs := NewService(&fakeQueue{}, sink, Options{Inactivity: time.Minute}, logger)

	idle, active := uuid.New(), uuid.New()
	now := time.Now()
	hs.lastActivity.Store(idle, now.Add(-2*time.Minute))
	hs.lastActivity.Store(active, now.Add(-10*time.Second))

	hs.sweepInactive(context.Background(), now)
	assert.Equal(t, []uuid.UUID{idle}, sink.abandoned)

	_, stillTracked := hs.lastActivity.Load(idle)
	assert.False(t, stillTracked)
	_, stillTracked = hs.lastActivity.Load(active)
	assert.True(t, stillTracked)
}
