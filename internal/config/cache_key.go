package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SummaryGenerationKey holds the counter that is bumped whenever criteria,
// sheets or exams change. Cached summaries of older generations are ignored.
func (r *CacheKeyStruct) SummaryGenerationKey() string {
	return "schein:summary:generation"
}

// StudentSummaryKey returns the cache key of a student's schein summary for
// the given generation.
func (r *CacheKeyStruct) StudentSummaryKey(generation int64, studentID string) string {
	return fmt.Sprintf("schein:summary:%d:student:%s", generation, studentID)
}

// RateLimitKey returns the counter key of a client in the current window.
func (r *CacheKeyStruct) RateLimitKey(scope, client string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, client, window)
}

// RevokedTokenKey marks a logged out JWT by its id.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
