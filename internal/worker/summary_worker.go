package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/config"
)

const (
	SummaryBatchSize    = 50
	SummaryBatchTimeout = 2 * time.Second
	SummaryPollTimeout  = 1 * time.Second
)

// Recomputer refreshes cached summaries of students.
type Recomputer interface {
	Recompute(ctx context.Context, studentIDs []uuid.UUID) error
}

// summaryQueue is the recompute queue. Pop blocks up to timeout and returns
// redis.Nil when nothing arrived.
type summaryQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Push(ctx context.Context, ids ...string) error
}

type redisQueue struct {
	rdb *redis.Client
	key string
}

func (q redisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	item, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		return "", err
	}
	if len(item) < 2 {
		return "", redis.Nil
	}
	return item[1], nil
}

func (q redisQueue) Push(ctx context.Context, ids ...string) error {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return q.rdb.RPush(ctx, q.key, args...).Err()
}

// SummaryWorker consumes the recompute queue and refreshes the summary cache
// in batches.
type SummaryWorker struct {
	queue      summaryQueue
	recomputer Recomputer
	log        zerolog.Logger
}

func NewSummaryWorker(rdb *redis.Client, recomputer Recomputer, log zerolog.Logger) *SummaryWorker {
	return newSummaryWorker(redisQueue{rdb: rdb, key: config.WorkerKey.RecomputeSummaryQueue}, recomputer, log)
}

func newSummaryWorker(queue summaryQueue, recomputer Recomputer, log zerolog.Logger) *SummaryWorker {
	return &SummaryWorker{
		queue:      queue,
		recomputer: recomputer,
		log:        log.With().Str("component", "summary_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *SummaryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SummaryWorker started")

	batch := newBatch()
	lastFlush := time.Now()

	for {
		if batch.len() > 0 &&
			(batch.len() >= SummaryBatchSize || time.Since(lastFlush) >= SummaryBatchTimeout) {

			w.flushSafe(ctx, batch.ids())
			batch = newBatch()
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", batch.len()).Msg("Shutdown requested. Requeueing pending students...")
			w.requeue(context.Background(), batch.ids())
			return

		default:
			item, err := w.queue.Pop(ctx, SummaryPollTimeout)
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			id, err := uuid.Parse(item)
			if err != nil {
				w.log.Error().Err(err).Str("payload", item).Msg("Invalid student id")
				continue
			}
			batch.add(id)
		}
	}
}

func (w *SummaryWorker) flushSafe(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}

	start := time.Now()
	if err := w.recomputer.Recompute(ctx, ids); err != nil {
		w.log.Error().Err(err).Int("students", len(ids)).Msg("Recompute failed, requeueing")
		w.requeue(context.Background(), ids)
		return
	}

	w.log.Debug().
		Int("students", len(ids)).
		Dur("took", time.Since(start)).
		Msg("Summaries recomputed")
}

func (w *SummaryWorker) requeue(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	payload := make([]string, len(ids))
	for i, id := range ids {
		payload[i] = id.String()
	}
	if err := w.queue.Push(ctx, payload...); err != nil {
		w.log.Error().Err(err).Int("students", len(ids)).Msg("Requeue failed")
	}
}

// batch collects student ids in arrival order without duplicates; a student
// graded several times within one batch is recomputed once.
type batch struct {
	order []uuid.UUID
	seen  map[uuid.UUID]struct{}
}

func newBatch() *batch {
	return &batch{seen: make(map[uuid.UUID]struct{})}
}

func (b *batch) add(id uuid.UUID) {
	if _, ok := b.seen[id]; ok {
		return
	}
	b.seen[id] = struct{}{}
	b.order = append(b.order, id)
}

func (b *batch) len() int { return len(b.order) }

func (b *batch) ids() []uuid.UUID { return b.order }
