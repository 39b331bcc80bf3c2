package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/tomaldridge12/loanbot/internal/platform/logging"
)

type RunnerConfig struct {
	// ScanInterval paces the roster-wide upcoming-match scan.
	ScanInterval time.Duration
	// PollInterval paces the per-tracked-player event polling.
	PollInterval time.Duration
}

func (c RunnerConfig) withDefaults() RunnerConfig {
	if c.ScanInterval <= 0 {
		c.ScanInterval = 10 * time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Minute
	}
	return c
}

// Runner drives the two periodic workers against the shared tracker: the
// low-frequency roster scan and the high-frequency tracking-queue poll.
// Each cycle runs immediately on start and then on its interval; a failed
// cycle is logged and the loop continues.
type Runner struct {
	tracker *Tracker
	cfg     RunnerConfig
	logger  *logging.Logger
}

func NewRunner(tracker *Tracker, cfg RunnerConfig, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		tracker: tracker,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		r.loop(ctx, "scan", r.cfg.ScanInterval, r.tracker.ScanOnce)
	}()
	go func() {
		defer wg.Done()
		r.loop(ctx, "poll", r.cfg.PollInterval, r.tracker.PollOnce)
	}()

	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, name string, interval time.Duration, cycle func(context.Context) error) {
	r.logger.Info("worker starting", "worker", name, "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := cycle(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("worker cycle failed", "worker", name, "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("worker stopping", "worker", name)
			return
		case <-ticker.C:
		}
	}
}
