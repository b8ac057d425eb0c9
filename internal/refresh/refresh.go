// Package refresh periodically reconciles stale progression records so
// countdowns advance even for users who have not opened the app.
package refresh

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/dailyquest/internal/cooldown"
	"github.com/abhisek/dailyquest/internal/logger"
	"github.com/abhisek/dailyquest/internal/progression"
	"github.com/abhisek/dailyquest/internal/quests"
	"github.com/abhisek/dailyquest/internal/store"
)

// Loader is the part of the quest service the runner drives.
type Loader interface {
	LoadToday(ctx context.Context, userID string) quests.Result
}

// Reader gives read-only access to records.
type Reader interface {
	Get(ctx context.Context, userID string) (*progression.Record, error)
}

// Config controls the refresh cadence.
type Config struct {
	Interval    time.Duration
	Concurrency int
	// Throttle skips users written within this window; their own client
	// call will reconcile them.
	Throttle time.Duration
}

// Stats summarises one pass.
type Stats struct {
	Checked   int
	Refreshed int
	Skipped   int
	Failed    int
}

// Runner walks every user on each tick and loads today's quest for those
// whose countdown has run out.
type Runner struct {
	loader Loader
	reader Reader
	lister store.Lister
	clock  cooldown.Clock
	cfg    Config
	log    *logger.Logger
}

// New creates a Runner.
func New(loader Loader, reader Reader, lister store.Lister, clock cooldown.Clock, cfg Config, log *logger.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{loader: loader, reader: reader, lister: lister, clock: clock, cfg: cfg, log: log}
}

// Run performs a pass immediately and then once per interval until ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.cfg.Interval)
	}
	r.log.Info("refresher started", "interval", r.cfg.Interval.String(), "concurrency", r.cfg.Concurrency)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.Warn("refresh pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			r.log.Info("refresher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce checks every user once. Per-user failures are counted and logged
// but never stop the pass; only listing users or reading the clock can fail
// it.
func (r *Runner) RunOnce(ctx context.Context) (Stats, error) {
	ids, err := r.lister.ListUserIDs(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list users: %w", err)
	}
	now, err := r.clock.Now(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read clock: %w", err)
	}

	var refreshed, skipped, failed int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			rec, err := r.reader.Get(gctx, id)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				r.log.Warn("refresh read failed", "user_id", id, "error", err)
				return nil
			}
			if !r.due(rec, now) {
				atomic.AddInt32(&skipped, 1)
				return nil
			}

			res := r.loader.LoadToday(gctx, id)
			switch {
			case !res.Success:
				atomic.AddInt32(&failed, 1)
				r.log.Warn("refresh failed", "user_id", id, "code", string(res.Code), "error", res.Error)
			case res.Changed:
				atomic.AddInt32(&refreshed, 1)
			default:
				atomic.AddInt32(&skipped, 1)
			}
			return nil
		})
	}
	err = g.Wait()

	st := Stats{
		Checked:   len(ids),
		Refreshed: int(refreshed),
		Skipped:   int(skipped),
		Failed:    int(failed),
	}
	r.log.Debug("refresh pass done",
		"checked", st.Checked,
		"refreshed", st.Refreshed,
		"skipped", st.Skipped,
		"failed", st.Failed,
	)
	return st, err
}

// due reports whether rec needs reconciling at now.
func (r *Runner) due(rec *progression.Record, now time.Time) bool {
	if !cooldown.Elapsed(now, rec.CountdownEnd) {
		return false
	}
	if r.cfg.Throttle > 0 && now.Sub(rec.LastQuestUpdate) < r.cfg.Throttle {
		return false
	}
	return true
}
