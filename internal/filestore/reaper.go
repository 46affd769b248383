package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Defaults match the service's documented retention policy.
const (
	DefaultRetention     = time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// EvictFunc is notified with the ids removed by a sweep.
type EvictFunc func(ctx context.Context, ids []string)

// Reaper evicts entries older than the retention window on a fixed interval.
type Reaper struct {
	store     Store
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
	metrics   *Metrics
	onEvict   EvictFunc
}

// ReaperOption customizes a Reaper.
type ReaperOption func(*Reaper)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ReaperOption {
	return func(r *Reaper) { r.now = now }
}

// WithMetrics records evictions and sweep failures.
func WithMetrics(m *Metrics) ReaperOption {
	return func(r *Reaper) { r.metrics = m }
}

// WithEvictHook registers fn to run after each sweep that removed something.
func WithEvictHook(fn EvictFunc) ReaperOption {
	return func(r *Reaper) { r.onEvict = fn }
}

// NewReaper builds a Reaper. Non-positive durations fall back to the defaults.
func NewReaper(store Store, interval, retention time.Duration, logger *slog.Logger, opts ...ReaperOption) *Reaper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	r := &Reaper{
		store:     store,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sweeps, waits one interval, and repeats until ctx is done.
// A failing sweep is logged and never ends the loop.
func (r *Reaper) Run(ctx context.Context) {
	r.logger.Info("reaper_started",
		slog.Duration("interval", r.interval),
		slog.Duration("retention", r.retention),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		_, _ = r.SweepOnce(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("reaper_stopped")
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce runs a single eviction pass with its own error boundary.
func (r *Reaper) SweepOnce(ctx context.Context) (removed []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sweep panicked: %v", p)
		}
		if err != nil {
			r.logger.Error("sweep_failed", slog.String("error", err.Error()))
			if r.metrics != nil {
				r.metrics.sweepErrors.Inc()
			}
		}
	}()

	cutoff := r.now().Add(-r.retention)
	removed, err = r.store.Sweep(ctx, cutoff)

	for _, id := range removed {
		r.logger.Info("file_evicted", slog.String("file_id", id))
	}
	if r.metrics != nil {
		r.metrics.evicted.Add(float64(len(removed)))
	}
	if len(removed) > 0 && r.onEvict != nil {
		r.onEvict(ctx, removed)
	}
	return removed, err
}
