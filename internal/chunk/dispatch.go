package chunk

import (
	"path/filepath"
	"strings"
)

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
}

// Dispatch selects the chunker for path based on its extension: Markdown
// extensions go to Markdown, recognized source extensions go to the
// matching source-language chunker, everything else goes to Simple. If the
// selected chunker produces no ranges, Simple is used as a fallback so
// every non-empty file still yields at least one fragment.
func Dispatch(path, text string) []Range {
	ext := strings.ToLower(filepath.Ext(path))

	var ranges []Range
	switch {
	case markdownExtensions[ext]:
		ranges = Markdown(text)
	default:
		if cfg, ok := SourceLanguages[ext]; ok {
			ranges = SourceLanguage(text, cfg)
		}
	}

	if len(ranges) == 0 {
		return Simple(text)
	}
	return ranges
}
