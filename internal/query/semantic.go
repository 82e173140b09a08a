// Package query implements the two search modes (spec §4.7): exact
// brute-force cosine semantic search over an in-memory Index, and lexical
// search delegated to an external ripgrep process, plus the multi-index
// merge rules the CLI/server layer uses on top of either.
package query

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amanmcp/amanmcp-flat/internal/fragment"
	"github.com/amanmcp/amanmcp-flat/internal/simil"
)

// Embedder is the subset of embedclient.Client's API semantic search needs
// to embed the query text, narrowed so tests can supply a fake.
type Embedder interface {
	Embed(ctx context.Context, text, model string, task fragment.Task) ([]float32, error)
}

// SemanticHit is one ranked result: the matching fragment, the file it
// belongs to, and its cosine similarity to the query.
type SemanticHit struct {
	Fragment   fragment.Fragment
	File       *fragment.File
	Similarity float32
}

// SemanticOptions parameterizes a single-index semantic search. Model and
// Task select which embedded fragment subset is eligible: a fragment is a
// candidate only when both match exactly (spec §4.7 — a model/task pair
// identifies one embedding space, and only vectors from that space are
// comparable by cosine similarity).
type SemanticOptions struct {
	Model             string
	Task              fragment.Task
	MaxResults        int
	AllowedExtensions []string // extension (with leading dot); empty means no filter
}

// Semantic embeds queryText under opts.Model/opts.Task, scores every
// eligible fragment in idx by cosine similarity, and returns the top
// opts.MaxResults hits sorted descending by similarity. Ties preserve
// insertion order: files are visited in sorted-path order and fragments in
// their original per-file order, both already deterministic.
func Semantic(ctx context.Context, idx *fragment.Index, embedder Embedder, queryText string, opts SemanticOptions) ([]SemanticHit, error) {
	queryVec, err := embedder.Embed(ctx, queryText, opts.Model, opts.Task)
	if err != nil {
		return nil, err
	}

	allowed := extensionSet(opts.AllowedExtensions)

	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var hits []SemanticHit
	for _, p := range paths {
		file := idx.Files[p]
		if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(file.Path))] {
			continue
		}
		for i := range file.Fragments {
			frag := &file.Fragments[i]
			if frag.Model != opts.Model || frag.Task != opts.Task {
				continue
			}
			sim, err := simil.Cosine(queryVec, frag.Embedding)
			if err != nil {
				return nil, err
			}
			hits = append(hits, SemanticHit{Fragment: *frag, File: file, Similarity: sim})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })

	if opts.MaxResults > 0 && len(hits) > opts.MaxResults {
		hits = hits[:opts.MaxResults]
	}
	return hits, nil
}

// IndexSemanticResult names the index a batch of hits came from, so
// MergeSemantic can be handed results from several indexes at once.
type IndexSemanticResult struct {
	IndexPath string
	Hits      []SemanticHit
}

// MergeSemantic concatenates per-index hits (each already capped at its own
// maxResults by the caller's Semantic calls), re-sorts the union globally
// by similarity, and truncates to maxResults (spec §4.7 multi-index
// search).
func MergeSemantic(perIndex []IndexSemanticResult, maxResults int) []SemanticHit {
	var all []SemanticHit
	for _, r := range perIndex {
		all = append(all, r.Hits...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Similarity > all[j].Similarity })
	if maxResults > 0 && len(all) > maxResults {
		all = all[:maxResults]
	}
	return all
}

func extensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = true
	}
	return set
}
