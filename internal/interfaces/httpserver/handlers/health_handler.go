package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/supportchat/chat-api/internal/interfaces/httpserver/responses"
)

const (
	probeTimeout    = 3 * time.Second
	llmProbeTimeout = 15 * time.Second
)

// LLMProber checks connectivity to the upstream completion API.
type LLMProber interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports liveness and dependency readiness.
type HealthHandler struct {
	db     *gorm.DB
	redis  redis.UniversalClient
	prober LLMProber
	log    zerolog.Logger
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(db *gorm.DB, redisClient redis.UniversalClient, prober LLMProber, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		prober: prober,
		log:    log.With().Str("handler", "health").Logger(),
	}
}

// Healthz handles GET /healthz: process liveness only.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Readyz handles GET /readyz. Dependencies are probed concurrently; a dead
// database makes the service unhealthy, a dead cache only degrades it since
// every cached path has a database fallback. The upstream AI service is too
// slow and costly to probe on every readiness check, so it is reported as up
// here and probed on demand via ProbeLLM.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	var dbErr, redisErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbErr = h.probeDatabase(gctx)
		return nil
	})
	g.Go(func() error {
		redisErr = h.redis.Ping(gctx).Err()
		return nil
	})
	g.Wait()

	services := gin.H{
		"database": statusOf(dbErr),
		"cache":    statusOf(redisErr),
		"llm":      "up",
	}

	switch {
	case dbErr != nil:
		h.log.Error().AnErr("database", dbErr).Msg("readiness probe failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "services": services})
	case redisErr != nil:
		h.log.Warn().AnErr("cache", redisErr).Msg("cache unavailable, running degraded")
		c.JSON(http.StatusOK, gin.H{"status": "degraded", "services": services})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "services": services})
	}
}

// ProbeLLM handles GET /health/llm: an authenticated on-demand probe that
// issues a minimal completion against the upstream API. It spends real
// tokens, so it is kept off the readiness path.
func (h *HealthHandler) ProbeLLM(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), llmProbeTimeout)
	defer cancel()

	if err := h.prober.HealthCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("llm probe failed")
		responses.HandleError(c, err, "upstream completion API is unreachable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "up"})
}

func (h *HealthHandler) probeDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func statusOf(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
