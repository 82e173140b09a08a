package chunk

import "strings"

// Generic chunker parameters (spec §4.1).
const (
	SoftMaxLines = 120
	MinLines     = 40
	MaxLineChars = 700
)

// Simple splits file text into line-bounded fragments with no structural
// awareness: a window is flushed once it reaches SoftMaxLines, or once it
// has reached MinLines and the current line is blank. Any line that is
// itself too long or blob-like is hard-isolated into its own single-line
// fragment, flushing whatever window preceded it first.
func Simple(text string) []Range {
	lines := splitLines(text)
	if len(lines) == 0 {
		return []Range{}
	}

	var ranges []Range
	windowStart := 0 // 0-indexed
	count := 0

	flush := func(endIdx int) {
		if count == 0 {
			return
		}
		ranges = append(ranges, Range{
			StartLine:      windowStart + 1,
			EndLine:        endIdx + 1,
			ChunkAlgorithm: "simple",
			FragmentType:   "document",
		})
		count = 0
	}

	for i, line := range lines {
		if len(line) >= MaxLineChars || isBlobLike(line) {
			flush(i - 1)
			ranges = append(ranges, Range{
				StartLine:      i + 1,
				EndLine:        i + 1,
				ChunkAlgorithm: "simple",
				FragmentType:   "document",
			})
			windowStart = i + 1
			continue
		}

		if count == 0 {
			windowStart = i
		}
		count++

		isBlank := strings.TrimSpace(line) == ""
		if count >= SoftMaxLines || (count >= MinLines && isBlank) {
			flush(i)
			windowStart = i + 1
		}
	}
	flush(len(lines) - 1)

	return ranges
}

// splitLines splits text on "\n" the way the builder later slices fragment
// content: a trailing newline does not produce a spurious empty final line.
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
