package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/response"
)

// RateLimiter is a fixed window limiter per client IP backed by Redis, so
// every server instance shares the same budget.
type RateLimiter struct {
	rdb    *redis.Client
	scope  string
	limit  int64
	window time.Duration
	log    zerolog.Logger
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
func NewRateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		log:    log.With().Str("component", "rate_limiter").Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits requests by IP. Redis
// failures let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().UnixNano() / int64(rl.window)
		key := config.CacheKey.RateLimitKey(rl.scope, c.ClientIP(), window)

		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, rl.window)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.log.Warn().Err(err).Msg("Rate limit check failed")
			c.Next()
			return
		}

		if incr.Val() > rl.limit {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
