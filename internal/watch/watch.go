// Package watch implements the watch loop (spec §4.8): a polling loop that
// runs a full incremental update over every configured target on a fixed
// interval, with per-target error isolation so one target's failure never
// stops the loop or the others. An fsnotify-backed opt-in variant trades the
// fixed interval for event-driven low latency.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amanmcp/amanmcp-flat/internal/builder"
	"github.com/amanmcp/amanmcp-flat/internal/codec"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/updater"
)

// Target is one configured folder or git-repo the watch loop keeps in sync
// with its on-disk index.
type Target struct {
	Name      string
	IndexPath string
	Root      string
	Kind      fragment.Kind
	Embedder  builder.Embedder
	Options   builder.Options
}

// Status is the last observed outcome of updating one target, kept so the
// process running the watch loop can read per-target health without
// re-running anything.
type Status struct {
	Name      string
	LastRun   time.Time
	LastError error
	Changed   bool
}

// Tracker holds the last Status per target name. Safe for concurrent use:
// the watch loop writes while other goroutines read. It lives in the
// watching process only; no CLI command reads it.
type Tracker struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{statuses: make(map[string]Status)}
}

func (t *Tracker) set(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses[s.Name] = s
}

// Status returns the last recorded status for name, if any has been
// recorded yet.
func (t *Tracker) Status(name string) (Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.statuses[name]
	return s, ok
}

// All returns a snapshot of every tracked status.
func (t *Tracker) All() []Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Status, 0, len(t.statuses))
	for _, s := range t.statuses {
		out = append(out, s)
	}
	return out
}

// Watch runs an incremental update over every target, then repeats every
// intervalSeconds (clamped to a minimum of 1) until ctx is cancelled.
// Per-target errors are logged and recorded on tracker rather than stopping
// the loop (spec §4.8 — "catch and log any error, never exit"). Cancellation
// is cooperative: observed between targets and at the sleep boundary, never
// by forcibly interrupting an in-flight update.
func Watch(ctx context.Context, intervalSeconds int, targets []Target, tracker *Tracker, logger *slog.Logger) error {
	if intervalSeconds < 1 {
		intervalSeconds = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracker == nil {
		tracker = NewTracker()
	}

	runPass(ctx, targets, tracker, logger)

	ticker := time.NewTicker(time.Duration(intervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runPass(ctx, targets, tracker, logger)
		}
	}
}

func runPass(ctx context.Context, targets []Target, tracker *Tracker, logger *slog.Logger) {
	for _, target := range targets {
		if ctx.Err() != nil {
			return
		}
		runOne(ctx, target, tracker, logger)
	}
}

func runOne(ctx context.Context, target Target, tracker *Tracker, logger *slog.Logger) {
	idx, changed, err := updater.Update(ctx, target.IndexPath, target.Kind, target.Root, target.Embedder, target.Options)
	status := Status{Name: target.Name, LastRun: time.Now(), LastError: err, Changed: changed}
	if err != nil {
		logger.Warn("watch: update failed for target", slog.String("target", target.Name), slog.Any("error", err))
		tracker.set(status)
		return
	}
	if changed {
		if writeErr := codec.Write(target.IndexPath, idx); writeErr != nil {
			status.LastError = writeErr
			logger.Warn("watch: failed to persist updated index", slog.String("target", target.Name), slog.Any("error", writeErr))
		}
	}
	tracker.set(status)
}
