package query

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"sort"
	"strings"

	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

// LexicalHit is one ripgrep match resolved against the index's file
// records.
type LexicalHit struct {
	File        *fragment.File
	LineNumber  int
	LineContent string
	MatchStart  int
	MatchEnd    int
}

// LexicalOptions parameterizes a single-index lexical search.
type LexicalOptions struct {
	CaseSensitive bool
	MaxResults    int
}

// rgRecord is the subset of ripgrep's --json line shape this package reads.
// Only "type":"match" records carry a Data payload this package uses;
// "begin"/"end"/"summary" records are skipped.
type rgRecord struct {
	Type string `json:"type"`
	Data struct {
		Path struct {
			Text string `json:"text"`
		} `json:"path"`
		Lines struct {
			Text string `json:"text"`
		} `json:"lines"`
		LineNumber int `json:"line_number"`
		Submatches []struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"submatches"`
	} `json:"data"`
}

// Lexical runs `rg --json --line-number --column [--ignore-case] pattern
// idx.Path` and resolves each match against idx.Files. A non-zero ripgrep
// exit or any subprocess-launch error yields an empty result set, not an
// error (spec §4.7 — a lexical miss is not exceptional). Malformed JSON
// lines are skipped silently.
func Lexical(ctx context.Context, idx *fragment.Index, pattern string, opts LexicalOptions) []LexicalHit {
	args := []string{"--json", "--line-number", "--column"}
	if !opts.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	args = append(args, pattern, idx.Path)

	cmd := exec.CommandContext(ctx, "rg", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return []LexicalHit{}
	}

	var hits []LexicalHit
	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if opts.MaxResults > 0 && len(hits) >= opts.MaxResults {
			break
		}

		var rec rgRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.Type != "match" {
			continue
		}

		file, ok := idx.Files[resolvePath(idx, rec.Data.Path.Text)]
		if !ok {
			continue
		}

		for _, sm := range rec.Data.Submatches {
			if opts.MaxResults > 0 && len(hits) >= opts.MaxResults {
				break
			}
			hits = append(hits, LexicalHit{
				File:        file,
				LineNumber:  rec.Data.LineNumber,
				LineContent: strings.TrimRight(rec.Data.Lines.Text, "\n"),
				MatchStart:  sm.Start,
				MatchEnd:    sm.End - 1,
			})
		}
	}

	return hits
}

// resolvePath looks up rgPath exactly against idx.Files; if that misses
// (ripgrep may report a path relative to a different cwd), it falls back to
// a suffix match against the sorted key set for determinism when more than
// one candidate qualifies.
func resolvePath(idx *fragment.Index, rgPath string) string {
	if _, ok := idx.Files[rgPath]; ok {
		return rgPath
	}

	paths := make([]string, 0, len(idx.Files))
	for p := range idx.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if strings.HasSuffix(p, rgPath) || strings.HasSuffix(rgPath, p) {
			return p
		}
	}
	return rgPath
}

// IndexLexicalResult names the index a batch of hits came from, so
// MergeLexical can combine results from several indexes.
type IndexLexicalResult struct {
	IndexPath string
	Hits      []LexicalHit
}

// MergeLexical concatenates per-index hits and sorts the union by
// (filename, lineNumber), the key spec §4.7 mandates for merged lexical
// results.
func MergeLexical(perIndex []IndexLexicalResult) []LexicalHit {
	var all []LexicalHit
	for _, r := range perIndex {
		all = append(all, r.Hits...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].File.Filename != all[j].File.Filename {
			return all[i].File.Filename < all[j].File.Filename
		}
		return all[i].LineNumber < all[j].LineNumber
	})
	return all
}
