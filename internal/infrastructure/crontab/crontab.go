// Package crontab runs the periodic FAQ listing-cache warmup.
package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"github.com/supportchat/chat-api/internal/domain/faq"
)

const jobTimeout = 1 * time.Minute

// Config controls the warmup schedule.
type Config struct {
	Enabled  bool
	Interval time.Duration
}

// Crontab schedules background maintenance jobs.
type Crontab struct {
	ctab *crontab.Crontab
	faqs *faq.Service
	cfg  Config
	log  zerolog.Logger
}

// NewCrontab builds the scheduler.
func NewCrontab(faqs *faq.Service, cfg Config, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab: crontab.New(),
		faqs: faqs,
		cfg:  cfg,
		log:  log.With().Str("component", "crontab").Logger(),
	}
}

// Run warms the cache once at startup, schedules the refresh, and blocks
// until ctx is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	if !c.cfg.Enabled {
		<-ctx.Done()
		return nil
	}

	c.warm(ctx)

	minutes := int(c.cfg.Interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}
	cronExpr := fmt.Sprintf("*/%d * * * *", minutes)
	if err := c.ctab.AddJob(cronExpr, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		c.warm(jobCtx)
	}); err != nil {
		return fmt.Errorf("schedule FAQ warmup: %w", err)
	}
	c.log.Info().Int("interval_minutes", minutes).Msg("FAQ cache warmup scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) warm(ctx context.Context) {
	if err := c.faqs.WarmListingCache(ctx); err != nil {
		c.log.Error().Err(err).Msg("FAQ cache warmup failed")
	}
}
