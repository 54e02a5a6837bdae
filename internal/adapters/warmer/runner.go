// Package warmer refreshes the cached story-list page on a schedule so the
// first reader after an invalidation still gets a warm page.
package warmer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmable is the slice of the story service the warmer needs.
type Warmable interface {
	WarmList(ctx context.Context) error
}

// Options groups dependencies for Runner.
type Options struct {
	Stories  Warmable
	Schedule string // cron spec; default "*/5 * * * *"
	Logger   *slog.Logger
}

// Runner owns the cron goroutine. Warm failures are logged, never fatal.
type Runner struct {
	stories  Warmable
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

// New constructs a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Stories == nil {
		return nil, errors.New("warmer: story service is required")
	}
	schedule := opts.Schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{stories: opts.Stories, schedule: schedule, logger: logger}, nil
}

// Start warms once immediately, then on the cron schedule, until ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	r.warm(ctx)

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.warm(ctx) }); err != nil {
		return err
	}
	r.cron = c
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		r.logger.Warn("cache warmer did not stop cleanly")
	}
	return nil
}

func (r *Runner) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := r.stories.WarmList(warmCtx); err != nil {
		r.logger.ErrorContext(ctx, "cache warm failed", "error", err)
		return
	}
	r.logger.DebugContext(ctx, "story list cache warmed")
}
