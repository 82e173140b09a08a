package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amanmcp/amanmcp-flat/internal/builder"
	"github.com/amanmcp/amanmcp-flat/internal/indexlock"
	"github.com/amanmcp/amanmcp-flat/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var intervalSeconds int
	var useFSNotify bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep every configured folder and git repo's index current",
		Long: `watch runs continuously, re-indexing configured folders and git repos
whenever they change: either on a fixed polling interval, or (with
--fsnotify) in response to filesystem events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var embedder builder.Embedder
			if client := buildEmbedder(cfg); client != nil {
				embedder = client
			}

			targets, err := watchTargets(cfg, embedder)
			if err != nil {
				return err
			}

			locks := make([]*indexlock.Lock, 0, len(targets))
			for _, target := range targets {
				lock := indexlock.New(target.IndexPath)
				if err := lock.MustTryLock(); err != nil {
					return err
				}
				locks = append(locks, lock)
			}
			defer func() {
				for _, lock := range locks {
					_ = lock.Unlock()
				}
			}()

			tracker := watch.NewTracker()
			logger := slog.Default()

			if useFSNotify {
				return watch.WatchFSNotify(ctx, time.Second, targets, tracker, logger)
			}
			return watch.Watch(ctx, intervalSeconds, targets, tracker, logger)
		},
	}

	cmd.Flags().IntVar(&intervalSeconds, "interval", 30, "polling interval in seconds")
	cmd.Flags().BoolVar(&useFSNotify, "fsnotify", false, "use filesystem events instead of polling")

	return cmd
}
