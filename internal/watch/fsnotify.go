package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

// DefaultDebounce is how long WatchFSNotify waits after a target's last
// filesystem event before running an update, coalescing bursts (a git
// checkout, an editor's save-then-rewrite) into a single pass.
const DefaultDebounce = 300 * time.Millisecond

// WatchFSNotify is the opt-in low-latency alternative to Watch: rather than
// a fixed polling interval, it watches each target's directory tree with
// fsnotify and runs an incremental update once a target has seen no new
// event for the debounce window (each event restarts that target's timer). Like Watch, a single target's update
// failure is logged and recorded on tracker, never fatal to the loop.
func WatchFSNotify(ctx context.Context, debounce time.Duration, targets []Target, tracker *Tracker, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracker == nil {
		tracker = NewTracker()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return amanerrors.IO("failed to start fsnotify watcher", err)
	}
	defer func() { _ = fsw.Close() }()

	byRoot := make(map[string]Target, len(targets))
	for _, target := range targets {
		byRoot[target.Root] = target
		if addErr := addRecursive(fsw, target.Root); addErr != nil {
			logger.Warn("fsnotify: failed to watch target root", slog.String("target", target.Name), slog.Any("error", addErr))
		}
	}

	pending := make(map[string]*time.Timer)
	trigger := make(chan string, len(targets)+1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			root := rootFor(ev.Name, byRoot)
			if root == "" {
				continue
			}
			if existing, has := pending[root]; has {
				existing.Stop()
			}
			r := root
			pending[root] = time.AfterFunc(debounce, func() {
				select {
				case trigger <- r:
				default:
				}
			})

		case root := <-trigger:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if target, ok := byRoot[root]; ok {
				runOne(ctx, target, tracker, logger)
			}

		case fsErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("fsnotify watch: backend error", slog.Any("error", fsErr))
		}
	}
}

// rootFor returns the configured target root that contains path, or "" if
// none matches (an event outside every watched root).
func rootFor(path string, byRoot map[string]Target) string {
	for root := range byRoot {
		if strings.HasPrefix(path, root) {
			return root
		}
	}
	return ""
}

// addRecursive registers every directory under root with fsw, since
// fsnotify watches are not recursive on their own. .git is skipped, matching
// internal/walk's discovery rule.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		}
		return nil
	})
}
