package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports liveness of the service and its backends.
type SystemHandler struct {
	db        Pinger
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(db Pinger, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	Database       string `json:"database"`
	Redis          string `json:"redis"`
	RecomputeQueue int64  `json:"recompute_queue"`
	Goroutines     int    `json:"goroutines"`
	GoVersion      string `json:"go_version"`
}

// Health godoc
// GET /health
// Answers 200 when every backend is reachable, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		Database:   "ok",
		Redis:      "ok",
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Database ping failed")
			report.Database = "unreachable"
			report.Status = "degraded"
		}
	}
	if h.rdb != nil {
		n, err := h.rdb.LLen(ctx, config.WorkerKey.RecomputeSummaryQueue).Result()
		if err != nil {
			h.log.Warn().Err(err).Msg("Redis ping failed")
			report.Redis = "unreachable"
			report.Status = "degraded"
		}
		report.RecomputeQueue = n
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}
