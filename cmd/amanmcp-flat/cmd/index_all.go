package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amanmcp/amanmcp-flat/internal/builder"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/indexlock"
	"github.com/amanmcp/amanmcp-flat/internal/updater"
	"github.com/amanmcp/amanmcp-flat/internal/watch"
)

func newIndexAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index-all",
		Short: "Build or update the index for every configured folder and git repo",
		Args:  cobra.NoArgs,
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

			for _, target := range targets {
				if err := indexOneTarget(ctx, cmd, target); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func indexOneTarget(ctx context.Context, cmd *cobra.Command, target watch.Target) error {
	lock := indexlock.New(target.IndexPath)
	if err := lock.MustTryLock(); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	idx, changed, err := updater.Update(ctx, target.IndexPath, target.Kind, target.Root, target.Embedder, target.Options)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", target.Root, err)
	}

	kind := "folder"
	if target.Kind == fragment.KindGitRepo {
		kind = "git repo"
	}
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %s %s: %d files\n", kind, target.Root, len(idx.Files))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is up to date: %d files\n", kind, target.Root, len(idx.Files))
	}
	return nil
}
