package chunk

import (
	"strings"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

// Split divides a fragment's content in half so the embedding stage can
// retry each half after an input-too-long response. A multi-line fragment
// splits at the line midpoint; a single-line fragment splits at the
// character midpoint. Content of length ≤ 1 cannot be split and yields
// InvalidArgument.
func Split(content string, startLine, endLine int) (left, right Fragment, err error) {
	if len(content) <= 1 {
		return Fragment{}, Fragment{}, amanerrors.InvalidArgument("content too short to split")
	}

	if endLine > startLine {
		lines := strings.Split(content, "\n")
		mid := len(lines) / 2
		if mid == 0 {
			mid = 1
		}
		leftLines := lines[:mid]
		rightLines := lines[mid:]
		leftEnd := startLine + len(leftLines) - 1
		return Fragment{
				Content:   strings.Join(leftLines, "\n"),
				StartLine: startLine,
				EndLine:   leftEnd,
			}, Fragment{
				Content:   strings.Join(rightLines, "\n"),
				StartLine: leftEnd + 1,
				EndLine:   endLine,
			}, nil
	}

	mid := len(content) / 2
	return Fragment{
			Content:   content[:mid],
			StartLine: startLine,
			EndLine:   endLine,
		}, Fragment{
			Content:   content[mid:],
			StartLine: startLine,
			EndLine:   endLine,
		}, nil
}

// Fragment is the minimal shape Split returns: a content slice and the line
// range it now covers. The caller (the embedding retry path) turns this
// into a full fragment.Fragment with the original's other metadata intact.
type Fragment struct {
	Content   string
	StartLine int
	EndLine   int
}
