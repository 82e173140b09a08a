// Package searchapi is the shared search execution shared by the MCP and
// HTTP adapters: resolve a config's indexes, run lexical or semantic
// search across all of them, and attribute each hit back to the
// configured folder or git repo it came from.
package searchapi

import (
	"context"
	"strings"

	"github.com/amanmcp/amanmcp-flat/internal/config"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/indexstore"
	"github.com/amanmcp/amanmcp-flat/internal/query"
)

const (
	DefaultMaxResults = 20
	MaxMaxResults     = 200
)

// Clamp applies a default when value is non-positive, then bounds the
// result to [min, max]. Shared by both adapters so "maxResults" behaves
// identically over HTTP and over MCP.
func Clamp(value, fallback, min, max int) int {
	if value <= 0 {
		value = fallback
	}
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}

// RipgrepOptions parameterizes Ripgrep.
type RipgrepOptions struct {
	CaseSensitive bool
	MaxResults    int
}

// RipgrepResult is one lexical match, attributed to the configured folder
// or git repo it came from.
type RipgrepResult struct {
	IndexRoot   string
	IndexKind   string
	FilePath    string
	LineNumber  int
	LineContent string
}

// Ripgrep runs a lexical search over every index named by cfg and returns
// the globally merged, capped results.
func Ripgrep(ctx context.Context, cfg *config.Config, pattern string, opts RipgrepOptions) ([]RipgrepResult, error) {
	maxResults := Clamp(opts.MaxResults, DefaultMaxResults, 1, MaxMaxResults)

	entries, err := indexstore.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	qopts := query.LexicalOptions{CaseSensitive: opts.CaseSensitive, MaxResults: maxResults}

	var perIndex []query.IndexLexicalResult
	for _, entry := range entries {
		if entry.Index == nil {
			continue
		}
		hits := query.Lexical(ctx, entry.Index, pattern, qopts)
		perIndex = append(perIndex, query.IndexLexicalResult{IndexPath: entry.IndexPath, Hits: hits})
	}

	merged := query.MergeLexical(perIndex)
	if len(merged) > maxResults {
		merged = merged[:maxResults]
	}

	out := make([]RipgrepResult, 0, len(merged))
	for _, hit := range merged {
		root, kind := attributeRoot(entries, hit.File.Path)
		out = append(out, RipgrepResult{
			IndexRoot:   root,
			IndexKind:   kind,
			FilePath:    hit.File.Path,
			LineNumber:  hit.LineNumber,
			LineContent: hit.LineContent,
		})
	}
	return out, nil
}

// EmbeddingOptions parameterizes Embedding. Model defaults to
// cfg.EmbeddingModel when empty.
type EmbeddingOptions struct {
	Model      string
	MaxResults int
	Extensions []string
}

// EmbeddingResult is one semantic match, attributed to the configured
// folder or git repo it came from.
type EmbeddingResult struct {
	IndexRoot  string
	IndexKind  string
	FilePath   string
	StartLine  int
	EndLine    int
	Similarity float32
}

// Embedding runs a semantic search over every index named by cfg and
// returns the globally merged, capped results.
func Embedding(ctx context.Context, cfg *config.Config, embedder query.Embedder, queryText string, opts EmbeddingOptions) ([]EmbeddingResult, error) {
	maxResults := Clamp(opts.MaxResults, DefaultMaxResults, 1, MaxMaxResults)

	entries, err := indexstore.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	// The builder tags every indexed fragment with TaskRetrievalDocument
	// (internal/builder.Options.withDefaults) since no caller configures a
	// different build task; a query must be embedded and filtered under
	// that same task, or query.Semantic's frag.Task != opts.Task guard
	// excludes the entire corpus. Querying under TaskRetrievalQuery only
	// makes sense once dual-task indexing (spec §4.2) actually embeds a
	// RetrievalQuery-tagged copy of each fragment.
	model := opts.Model
	if model == "" {
		model = cfg.EmbeddingModel
	}
	qopts := query.SemanticOptions{
		Model:             model,
		Task:              fragment.TaskRetrievalDocument,
		MaxResults:        maxResults,
		AllowedExtensions: opts.Extensions,
	}

	var perIndex []query.IndexSemanticResult
	for _, entry := range entries {
		if entry.Index == nil {
			continue
		}
		hits, err := query.Semantic(ctx, entry.Index, embedder, queryText, qopts)
		if err != nil {
			return nil, err
		}
		perIndex = append(perIndex, query.IndexSemanticResult{IndexPath: entry.IndexPath, Hits: hits})
	}

	merged := query.MergeSemantic(perIndex, maxResults)

	out := make([]EmbeddingResult, 0, len(merged))
	for _, hit := range merged {
		root, kind := attributeRoot(entries, hit.File.Path)
		out = append(out, EmbeddingResult{
			IndexRoot:  root,
			IndexKind:  kind,
			FilePath:   hit.File.Path,
			StartLine:  hit.Fragment.StartLine,
			EndLine:    hit.Fragment.EndLine,
			Similarity: hit.Similarity,
		})
	}
	return out, nil
}

// attributeRoot returns the configured root that owns path: the longest
// matching prefix among entries' roots, since a file path is always inside
// exactly one configured folder or repo.
func attributeRoot(entries []indexstore.Entry, path string) (root, kind string) {
	best := ""
	for _, entry := range entries {
		if strings.HasPrefix(path, entry.Root) && len(entry.Root) > len(best) {
			best = entry.Root
			root = entry.Root
			kind = kindLabel(entry.Kind)
		}
	}
	return root, kind
}

func kindLabel(k fragment.Kind) string {
	if k == fragment.KindGitRepo {
		return "git-repo"
	}
	return "folder"
}
