package cmd

import (
	"log/slog"

	"github.com/amanmcp/amanmcp-flat/internal/builder"
	"github.com/amanmcp/amanmcp-flat/internal/config"
	"github.com/amanmcp/amanmcp-flat/internal/embedclient"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/watch"
)

// loadConfig loads and validates the config at its default location.
func loadConfig() (*config.Config, error) {
	return config.LoadDefault()
}

// buildEmbedder returns the process-wide embedding client for cfg, or nil
// if no apiBaseUrl is configured (lexical-only operation).
func buildEmbedder(cfg *config.Config) *embedclient.Client {
	if cfg.APIBaseURL == "" {
		return nil
	}
	return embedclient.Get(embedclient.Config{
		APIBaseURL: cfg.APIBaseURL,
		APIKey:     cfg.APIKey,
	}, slog.Default())
}

// buildOptions turns a Config into builder.Options, wiring its filter rules
// and embedding model.
func buildOptions(cfg *config.Config) builder.Options {
	return builder.Options{
		Filter: cfg.Filter(),
		Model:  cfg.EmbeddingModel,
		Logger: slog.Default(),
	}
}

// watchTargets resolves every configured folder/git-repo into a
// watch.Target, for use by both the watch and index-all commands.
func watchTargets(cfg *config.Config, embedder builder.Embedder) ([]watch.Target, error) {
	var targets []watch.Target

	for _, folder := range cfg.Folders {
		indexPath, err := config.FolderIndexPath(folder)
		if err != nil {
			return nil, err
		}
		targets = append(targets, watch.Target{
			Name:      folder,
			IndexPath: indexPath,
			Root:      folder,
			Kind:      fragment.KindFolder,
			Embedder:  embedder,
			Options:   buildOptions(cfg),
		})
	}

	for _, repo := range cfg.GitRepos {
		indexPath, err := config.RepoIndexPath(repo)
		if err != nil {
			return nil, err
		}
		targets = append(targets, watch.Target{
			Name:      repo,
			IndexPath: indexPath,
			Root:      repo,
			Kind:      fragment.KindGitRepo,
			Embedder:  embedder,
			Options:   buildOptions(cfg),
		})
	}

	return targets, nil
}
