// Package indexstore resolves a Config's folders and gitRepos into their
// on-disk index paths and loads whichever of them already exist, the
// common first step shared by internal/searchapi (the search layer behind
// the CLI, HTTP and MCP adapters) and the CLI's show-indexes command.
package indexstore

import (
	"github.com/amanmcp/amanmcp-flat/internal/codec"
	"github.com/amanmcp/amanmcp-flat/internal/config"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

// Entry pairs a loaded index with the configured root it was built from and
// the on-disk path it was read from (or would be written to).
type Entry struct {
	Root      string
	IndexPath string
	Kind      fragment.Kind
	Index     *fragment.Index // nil if not yet built
}

// Resolve returns one Entry per folder and gitRepo configured in cfg, in
// that order, with Index populated for any that have an on-disk index
// file already. A target with no index file yet (never indexed) gets a
// nil Index rather than an error — the caller decides whether that's fatal.
func Resolve(cfg *config.Config) ([]Entry, error) {
	entries := make([]Entry, 0, len(cfg.Folders)+len(cfg.GitRepos))

	for _, folder := range cfg.Folders {
		path, err := config.FolderIndexPath(folder)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Root: folder, IndexPath: path, Kind: fragment.KindFolder})
	}
	for _, repo := range cfg.GitRepos {
		path, err := config.RepoIndexPath(repo)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Root: repo, IndexPath: path, Kind: fragment.KindGitRepo})
	}

	for i := range entries {
		idx, err := codec.Read(entries[i].IndexPath)
		if err != nil {
			// Covers both "never indexed yet" (os.ErrNotExist) and any
			// other read failure (corrupt payload, version mismatch
			// already purged the file): the entry is left un-indexed and
			// the next index-all/watch pass rebuilds it.
			continue
		}
		entries[i].Index = idx
	}

	return entries, nil
}

// Loaded returns only the entries that currently have an index on disk.
func Loaded(entries []Entry) []*fragment.Index {
	out := make([]*fragment.Index, 0, len(entries))
	for _, e := range entries {
		if e.Index != nil {
			out = append(out, e.Index)
		}
	}
	return out
}
