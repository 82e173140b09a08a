// Package updater implements the incremental index update (spec §4.6):
// load the existing index (or fall back to a full rebuild), diff it against
// the current filesystem, and re-chunk/re-embed only what changed.
package updater

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
	"github.com/amanmcp/amanmcp-flat/internal/builder"
	"github.com/amanmcp/amanmcp-flat/internal/codec"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/walk"
)

// Update loads the index at indexPath and brings it in line with the
// current contents of root. If no compatible index exists on disk (missing,
// corrupt, version-mismatched, or a different Kind than requested), it
// performs a full rebuild via internal/builder instead of diffing. The
// second return value reports whether the returned index differs from what
// is currently on disk; callers must not write it back when false (spec
// §4.6 step 7 — required both for byte-stable golden tests and to avoid
// needless writes from the watch loop).
func Update(ctx context.Context, indexPath string, kind fragment.Kind, root string, embedder builder.Embedder, opts builder.Options) (*fragment.Index, bool, error) {
	existing, needsRebuild := loadOrNil(indexPath, kind)
	if needsRebuild {
		idx, err := builder.Build(ctx, kind, root, embedder, opts)
		if err != nil {
			return nil, false, err
		}
		return idx, true, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, false, amanerrors.InvalidArgument(fmt.Sprintf("cannot resolve root path %q: %v", root, err))
	}

	paths, err := walk.Discover(absRoot, opts.Filter)
	if err != nil {
		return nil, false, amanerrors.IO(fmt.Sprintf("failed to discover files under %s", root), err)
	}
	onDisk := make(map[string]bool, len(paths))
	for _, p := range paths {
		onDisk[p] = true
	}

	changed := false

	for p := range existing.Files {
		if !onDisk[p] {
			delete(existing.Files, p)
			changed = true
		}
	}

	for _, p := range paths {
		current, ok := existing.Files[p]
		if ok && !needsReindexing(p, current) {
			continue
		}
		file, buildErr := builder.BuildFile(ctx, p, embedder, opts)
		if buildErr != nil {
			if amanerrors.Is(buildErr, amanerrors.CategoryIO) {
				// Unreadable right now; leave any prior record untouched.
				// It will be swept on a later update once it truly
				// disappears, matching spec §5's "a single file's
				// failure must not poison the whole index."
				continue
			}
			return nil, false, buildErr
		}
		existing.Files[p] = file
		changed = true
	}

	if kind == fragment.KindGitRepo {
		prevHash, prevDirty := existing.LatestCommitHash, existing.IsDirty
		builder.RefreshGitMetadata(ctx, existing)
		if existing.LatestCommitHash != prevHash || existing.IsDirty != prevDirty {
			changed = true
		}
	}

	return existing, changed, nil
}

// needsReindexing reports whether stored has fallen behind path's current
// on-disk state. mtime newer is an optimistic fast path; the hash is
// authoritative and is checked whenever mtime alone doesn't already say
// "reindex" (spec §4.6 step 3).
func needsReindexing(path string, stored *fragment.File) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	if float64(info.ModTime().Unix()) > stored.LastModified {
		return true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return sha256.Sum256(data) != stored.Hash
}

// loadOrNil attempts to load indexPath via the codec. It reports that a
// rebuild is needed (second return true) on any load failure or a Kind
// mismatch with what the caller requested; the codec has already deleted
// an incompatible on-disk file as a side effect of a failed Read.
func loadOrNil(indexPath string, kind fragment.Kind) (*fragment.Index, bool) {
	idx, err := codec.Read(indexPath)
	if err != nil {
		return nil, true
	}
	if idx.Kind != kind {
		return nil, true
	}
	return idx, false
}
