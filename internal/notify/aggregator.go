package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pharmafront/internal/domain"
)

// Source produces a fresh snapshot from current upstream data.
type Source interface {
	BuildSnapshot(ctx context.Context) (Snapshot, error)
}

// Sink receives the alerts of one tick.
type Sink interface {
	Publish(ctx context.Context, alerts []domain.Alert)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, alerts []domain.Alert)

func (f SinkFunc) Publish(ctx context.Context, alerts []domain.Alert) { f(ctx, alerts) }

const DefaultInterval = 30 * time.Second

// Aggregator polls a Source on a fixed interval, diffs each snapshot
// against the previous one and publishes delta alerts. The first snapshot
// after start is passive: it seeds the baseline without raising anything.
type Aggregator struct {
	source   Source
	sink     Sink
	interval time.Duration
	gates    Gates
	log      *zap.Logger

	mu     sync.Mutex
	prev   *Snapshot
	latest *Snapshot
}

func NewAggregator(source Source, sink Sink, interval time.Duration, gates Gates, log *zap.Logger) *Aggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		source:   source,
		sink:     sink,
		interval: interval,
		gates:    gates,
		log:      log,
	}
}

// Run polls until ctx is cancelled. It ticks once immediately so the
// passive summary view has data right after start.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// Latest returns the most recent snapshot, for the passive summary widget.
func (a *Aggregator) Latest() (Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		return Snapshot{}, false
	}
	return *a.latest, true
}

func (a *Aggregator) tick(ctx context.Context) {
	snap, err := a.source.BuildSnapshot(ctx)
	if err != nil {
		// Keep the previous baseline; a failed poll must not clear
		// data or fabricate a zero snapshot that would re-alert later.
		a.log.Warn("notification poll failed", zap.Error(err))
		return
	}
	if ctx.Err() != nil {
		// Torn down while the fetch was in flight; drop the late
		// result instead of touching state.
		return
	}

	a.mu.Lock()
	prev := a.prev
	a.prev = &snap
	a.latest = &snap
	a.mu.Unlock()

	if prev == nil {
		return
	}
	alerts := Diff(*prev, snap, a.gates)
	if len(alerts) == 0 {
		return
	}
	a.log.Info("thresholds newly crossed", zap.Int("alerts", len(alerts)))
	a.sink.Publish(ctx, alerts)
}
