// Package builder performs a full index build (spec §4.5): discover files
// under a root, chunk and embed each one, and assemble the results into a
// fragment.Index. A single file's unreadable-file error aborts only that
// file; an embedding failure that survives the split-and-retry path
// propagates out and aborts the whole build, matching spec §4.5's edge-case
// contract and surfaced to indexAll's caller.
package builder

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
	"github.com/amanmcp/amanmcp-flat/internal/chunk"
	"github.com/amanmcp/amanmcp-flat/internal/chunkpool"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/walk"
)

// DefaultMaxSplitDepth bounds how many times an oversized fragment is
// halved and retried before its embedding failure is treated as fatal.
const DefaultMaxSplitDepth = 2

// Embedder is the subset of embedclient.Client's API the builder depends
// on, narrowed so tests can supply a fake.
type Embedder interface {
	Embed(ctx context.Context, text, model string, task fragment.Task) ([]float32, error)
}

// Options configures a Build call.
type Options struct {
	Filter        walk.Filter
	Model         string
	Task          fragment.Task // default TaskRetrievalDocument
	MaxWorkers    int           // per-file concurrency; 0 uses chunkpool's default
	MaxSplitDepth int           // 0 uses DefaultMaxSplitDepth
	Logger        *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Task == "" {
		o.Task = fragment.TaskRetrievalDocument
	}
	if o.MaxSplitDepth <= 0 {
		o.MaxSplitDepth = DefaultMaxSplitDepth
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Build discovers every file under rootPath passing opts.Filter, chunks and
// embeds each one, and returns the assembled index. kind selects the
// folder/git-repo variant; git-repo indexes additionally carry
// latestCommitHash/isDirty.
func Build(ctx context.Context, kind fragment.Kind, rootPath string, embedder Embedder, opts Options) (*fragment.Index, error) {
	opts = opts.withDefaults()

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, amanerrors.InvalidArgument(fmt.Sprintf("cannot resolve root path %q: %v", rootPath, err))
	}

	var idx *fragment.Index
	if kind == fragment.KindGitRepo {
		idx = fragment.NewGitRepoIndex(absRoot, filepath.Base(absRoot))
	} else {
		idx = fragment.NewFolderIndex(absRoot)
	}

	paths, err := walk.Discover(absRoot, opts.Filter)
	if err != nil {
		return nil, amanerrors.IO(fmt.Sprintf("failed to discover files under %s", absRoot), err)
	}

	var mu sync.Mutex
	err = chunkpool.Run(ctx, paths, opts.MaxWorkers, func(ctx context.Context, path string) error {
		file, buildErr := buildFile(ctx, path, embedder, opts)
		if buildErr != nil {
			if amanerrors.Is(buildErr, amanerrors.CategoryIO) {
				opts.Logger.Warn("skipping unreadable file", slog.String("path", path), slog.Any("error", buildErr))
				return nil
			}
			return buildErr
		}
		mu.Lock()
		idx.Files[path] = file
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if kind == fragment.KindGitRepo {
		refreshGitMetadata(ctx, idx)
	}

	return idx, nil
}

// BuildFile (re)builds a single file's record: read, hash, chunk, embed.
// Exposed for internal/updater, which rebuilds individual stale files
// without re-discovering or re-embedding the rest of the index.
func BuildFile(ctx context.Context, path string, embedder Embedder, opts Options) (*fragment.File, error) {
	return buildFile(ctx, path, embedder, opts.withDefaults())
}

// RefreshGitMetadata is exported for internal/updater, which must refresh
// git metadata unconditionally on every incremental update (spec §4.6)
// rather than only at full-build time.
func RefreshGitMetadata(ctx context.Context, idx *fragment.Index) {
	refreshGitMetadata(ctx, idx)
}

// buildFile reads, hashes, chunks and embeds a single file. A read/stat
// failure returns an IoError that the caller treats as a per-file skip; an
// embedding failure returns an EmbeddingBackendError that the caller
// propagates to abort the whole build.
func buildFile(ctx context.Context, path string, embedder Embedder, opts Options) (*fragment.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, amanerrors.IO(fmt.Sprintf("failed to read %s", path), err).WithDetail("path", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, amanerrors.IO(fmt.Sprintf("failed to stat %s", path), err).WithDetail("path", path)
	}

	text := string(data)
	lines := splitLines(text)

	file := &fragment.File{
		Path:         path,
		Filename:     filepath.Base(path),
		Hash:         sha256.Sum256(data),
		CreationTime: float64(info.ModTime().Unix()),
		LastModified: float64(info.ModTime().Unix()),
	}

	ranges := chunk.Dispatch(path, text)
	for _, r := range ranges {
		content := sliceLines(lines, r.StartLine, r.EndLine)
		if strings.TrimSpace(content) == "" {
			continue
		}
		frags, err := embedWithRetry(ctx, embedder, content, r.StartLine, r.EndLine, r.ChunkAlgorithm, r.FragmentType, opts, opts.MaxSplitDepth)
		if err != nil {
			return nil, err
		}
		file.Fragments = append(file.Fragments, frags...)
	}

	if len(file.Fragments) == 0 {
		file.Fragments = append(file.Fragments, emptyFragment(opts))
	}

	return file, nil
}

// embedWithRetry embeds content once; on a retryable "input too long"
// failure it halves the fragment via chunk.Split and retries each half,
// up to depth times. Any other failure, or a retryable one with depth
// exhausted, is returned as-is.
func embedWithRetry(ctx context.Context, embedder Embedder, content string, startLine, endLine int, algorithm, fragmentType string, opts Options, depth int) ([]fragment.Fragment, error) {
	vec, err := embedder.Embed(ctx, content, opts.Model, opts.Task)
	if err != nil {
		if depth > 0 && isRetryableEmbedding(err) {
			left, right, splitErr := chunk.Split(content, startLine, endLine)
			if splitErr == nil {
				leftFrags, err := embedWithRetry(ctx, embedder, left.Content, left.StartLine, left.EndLine, algorithm, fragmentType, opts, depth-1)
				if err != nil {
					return nil, err
				}
				rightFrags, err := embedWithRetry(ctx, embedder, right.Content, right.StartLine, right.EndLine, algorithm, fragmentType, opts, depth-1)
				if err != nil {
					return nil, err
				}
				return append(leftFrags, rightFrags...), nil
			}
		}
		return nil, err
	}

	return []fragment.Fragment{{
		StartLine:      startLine,
		EndLine:        endLine,
		Embedding:      vec,
		FragmentType:   fragmentType,
		Model:          opts.Model,
		ChunkAlgorithm: algorithm,
		Task:           opts.Task,
		Hash:           sha256.Sum256([]byte(content)),
	}}, nil
}

func isRetryableEmbedding(err error) bool {
	for err != nil {
		if ae, ok := err.(*amanerrors.Error); ok {
			return ae.Category == amanerrors.CategoryEmbedding && ae.Retryable
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// emptyFragment is the single [1,1] fragment a file with no extractable
// text (empty, or whose only ranges chunked to blank content) still gets,
// so it remains represented in the index.
func emptyFragment(opts Options) fragment.Fragment {
	return fragment.Fragment{
		StartLine:      1,
		EndLine:        1,
		FragmentType:   "empty",
		Model:          opts.Model,
		ChunkAlgorithm: "empty",
		Task:           opts.Task,
		Hash:           sha256.Sum256(nil),
	}
}

// splitLines mirrors internal/chunk's line-splitting convention: a trailing
// newline does not produce a spurious empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// sliceLines returns the 1-based, inclusive [start,end] line range of lines
// joined back with "\n". Out-of-range bounds are clamped.
func sliceLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end || start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
