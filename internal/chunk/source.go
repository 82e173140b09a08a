package chunk

import "strings"

// SourceLanguageConfig names the routine keywords and chunk-algorithm tag
// for one source language's block-aware chunker.
type SourceLanguageConfig struct {
	Algorithm       string
	RoutineKeywords []string
}

// nimConfig mirrors the reference implementation's representative language:
// a handful of keywords that open a top-level routine block.
var nimConfig = SourceLanguageConfig{
	Algorithm:       "nim",
	RoutineKeywords: []string{"proc", "method", "func", "iterator", "template", "macro"},
}

// SourceLanguages maps a lowercase, dot-prefixed file extension to the
// source-language chunker configuration that handles it.
var SourceLanguages = map[string]SourceLanguageConfig{
	".nim": nimConfig,
	".nims": nimConfig,
}

// SourceLanguage splits file text using a language's routine-keyword
// heuristic: a top-level line (indentation 0) beginning with one of
// cfg.RoutineKeywords opens a routine block. The block continues until a
// non-empty line whose indentation is ≤ the opening line's, or EOF. The
// prelude before the first routine is flushed first, then each routine
// block; both are cut into plain SoftMaxLines windows (no blank-line or
// blob-line rules are applied).
func SourceLanguage(text string, cfg SourceLanguageConfig) []Range {
	lines := splitLines(text)
	if len(lines) == 0 {
		return []Range{}
	}

	var ranges []Range
	preludeEnd := -1 // index of last line before the first routine, -1 if none

	i := 0
	for i < len(lines) {
		if isRoutineStart(lines[i], cfg.RoutineKeywords) {
			break
		}
		preludeEnd = i
		i++
	}

	if preludeEnd >= 0 {
		ranges = append(ranges, windowedRanges(lines[:preludeEnd+1], 0, cfg.Algorithm, "document")...)
	}

	for i < len(lines) {
		start := i
		openIndent := indentOf(lines[i])
		i++
		for i < len(lines) {
			line := lines[i]
			if strings.TrimSpace(line) == "" {
				i++
				continue
			}
			if indentOf(line) <= openIndent {
				break
			}
			i++
		}
		ranges = append(ranges, windowedRanges(lines[start:i], start, cfg.Algorithm, cfg.Algorithm+"_block")...)
	}

	return ranges
}

// isRoutineStart reports whether line is a top-level (unindented) routine
// declaration beginning with one of keywords.
func isRoutineStart(line string, keywords []string) bool {
	if indentOf(line) != 0 {
		return false
	}
	trimmed := strings.TrimLeft(line, " \t")
	for _, kw := range keywords {
		if strings.HasPrefix(trimmed, kw) {
			rest := trimmed[len(kw):]
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '*' {
				return true
			}
		}
	}
	return false
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' {
			n++
		} else if r == '\t' {
			n += 1
		} else {
			break
		}
	}
	return n
}

// windowedRanges splits a contiguous slice of lines (offset is the 0-indexed
// position of lines[0] in the full file) into SoftMaxLines-sized windows.
func windowedRanges(lines []string, offset int, algorithm, fragmentType string) []Range {
	if len(lines) == 0 {
		return nil
	}
	var ranges []Range
	for start := 0; start < len(lines); start += SoftMaxLines {
		end := start + SoftMaxLines
		if end > len(lines) {
			end = len(lines)
		}
		ranges = append(ranges, Range{
			StartLine:      offset + start + 1,
			EndLine:        offset + end,
			ChunkAlgorithm: algorithm,
			FragmentType:   fragmentType,
		})
	}
	return ranges
}
