package chunk

import (
	"regexp"
	"strings"
)

// Markdown chunker parameters (spec §4.1). Spec §4.1 names only
// MaxHeaderSectionLines for this chunker, but spec §8 scenario S4 requires a
// section to close early on a blank line once it has reached a "min-section
// threshold" well under the 40-line MinLines the generic chunker uses for
// the same early-close behavior — S4's own 13-line sample closes on the
// blank at line 13, which only happens for a threshold <= 13. 10 is chosen
// to satisfy S4 while still skipping single-line or near-empty sections
// (DESIGN.md records this as an Open Question resolution).
const (
	MaxHeaderSectionLines = 120
	MinHeaderSectionLines = 10
	MaxMarkdownLineChars  = 700
)

// headerLine matches a line that (after optional leading whitespace) starts
// a Markdown header: "#", "##", ... "######".
var headerLine = regexp.MustCompile(`^\s*#{1,6}(\s|$)`)

// Markdown splits file text into header-bounded sections, using the
// package's default section-size parameters.
func Markdown(text string) []Range {
	return markdownWithParams(text, MaxHeaderSectionLines, MinHeaderSectionLines)
}

// markdownWithParams implements the Markdown chunker with configurable
// section bounds. A new section starts at every header line; a section is
// also closed once it reaches minLines and the current line is blank (the
// same early-close behavior the generic chunker applies to plain text, so a
// long section under one header does not grow past its first natural
// paragraph boundary once it's of a reasonable size), and is hard-capped at
// maxLines regardless. The same long-line/blob-like isolation the Simple
// chunker applies is applied here too.
func markdownWithParams(text string, maxLines, minLines int) []Range {
	lines := splitLines(text)
	if len(lines) == 0 {
		return []Range{}
	}

	var ranges []Range
	sectionStart := 0
	sectionLines := 0

	flush := func(endIdx int) {
		if sectionLines == 0 {
			return
		}
		ranges = append(ranges, Range{
			StartLine:      sectionStart + 1,
			EndLine:        endIdx + 1,
			ChunkAlgorithm: "markdown",
			FragmentType:   "markdown_section",
		})
		sectionLines = 0
	}

	for i, line := range lines {
		if len(line) >= MaxMarkdownLineChars || isBlobLike(line) {
			flush(i - 1)
			ranges = append(ranges, Range{
				StartLine:      i + 1,
				EndLine:        i + 1,
				ChunkAlgorithm: "markdown",
				FragmentType:   "markdown_section",
			})
			sectionStart = i + 1
			continue
		}

		if headerLine.MatchString(line) && sectionLines > 0 {
			flush(i - 1)
			sectionStart = i
		}
		if sectionLines == 0 {
			sectionStart = i
		}
		sectionLines++

		isBlank := strings.TrimSpace(line) == ""
		if sectionLines >= maxLines || (sectionLines >= minLines && isBlank) {
			flush(i)
			sectionStart = i + 1
		}
	}
	flush(len(lines) - 1)

	return ranges
}
