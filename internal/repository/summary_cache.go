package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/criteria"
)

// SummaryCache stores computed schein summaries in Redis. Entries are keyed
// by a generation counter: bumping it invalidates every cached summary at
// once without scanning keys.
type SummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(rdb *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current generation. A missing counter is generation 0.
func (c *SummaryCache) Generation(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, config.CacheKey.SummaryGenerationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// Bump starts a new generation.
func (c *SummaryCache) Bump(ctx context.Context) error {
	return c.rdb.Incr(ctx, config.CacheKey.SummaryGenerationKey()).Err()
}

// Get returns the cached summary of a student, or nil on a miss.
func (c *SummaryCache) Get(ctx context.Context, generation int64, studentID string) (*criteria.Summary, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.StudentSummaryKey(generation, studentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s criteria.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Set stores the summary of a student for the given generation.
func (c *SummaryCache) Set(ctx context.Context, generation int64, studentID string, s *criteria.Summary) error {
	if c.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.StudentSummaryKey(generation, studentID), raw, c.ttl).Err()
}

// Forget drops the cached summary of a student.
func (c *SummaryCache) Forget(ctx context.Context, generation int64, studentID string) error {
	return c.rdb.Del(ctx, config.CacheKey.StudentSummaryKey(generation, studentID)).Err()
}

// EnqueueRecompute pushes student ids onto the recompute queue.
func (c *SummaryCache) EnqueueRecompute(ctx context.Context, studentIDs ...string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	args := make([]interface{}, len(studentIDs))
	for i, id := range studentIDs {
		args[i] = id
	}
	return c.rdb.RPush(ctx, config.WorkerKey.RecomputeSummaryQueue, args...).Err()
}
