package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	Enabled   bool
	Window    time.Duration
	Max       int
	HourlyMax int
}

// RateLimiter is a fixed-window counter on Redis keyed by session ID when
// present and client IP otherwise. Redis failures fail open: throttling is
// protection, not correctness.
type RateLimiter struct {
	client redis.UniversalClient
	cfg    RateLimitConfig
	log    zerolog.Logger
}

// NewRateLimiter constructs the limiter.
func NewRateLimiter(client redis.UniversalClient, cfg RateLimitConfig, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "rate-limiter").Logger(),
	}
}

// Middleware enforces the window and hourly budgets.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	if !l.cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		subject := c.GetHeader("X-Session-ID")
		if subject == "" {
			subject = c.ClientIP()
		}

		if !l.allow(c, "ratelimit:w:"+subject, l.cfg.Window, l.cfg.Max) {
			return
		}
		if l.cfg.HourlyMax > 0 {
			if !l.allow(c, "ratelimit:h:"+subject, time.Hour, l.cfg.HourlyMax) {
				return
			}
		}
		c.Next()
	}
}

// allow increments the window counter and aborts with 429 when over budget.
func (l *RateLimiter) allow(c *gin.Context, key string, window time.Duration, max int) bool {
	ctx := c.Request.Context()

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn().Err(err).Msg("rate limit counter unavailable, failing open")
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			l.log.Warn().Err(err).Msg("failed to set rate limit window expiry")
		}
	}

	if int(count) > max {
		ttl, _ := l.client.TTL(ctx, key).Result()
		c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())+1))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"code":    "RATE_LIMIT",
			"error":   "too many requests",
			"message": "rate limit exceeded, please slow down",
		})
		return false
	}
	return true
}
