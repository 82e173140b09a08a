// Package chunk implements the fragment chunking algorithms: a generic
// line-based chunker, a Markdown-aware chunker, and a source-language-aware
// chunker, plus the extension-based dispatch between them and the
// embedding-retry splitter.
//
// Chunkers operate purely on line ranges — the file text is never copied
// into a fragment; callers slice lines from the original content when they
// need the fragment's text (for hashing or embedding).
package chunk

// Range is a 1-based, inclusive line range produced by a chunker, tagged
// with the algorithm and fragment-type metadata the fragment model needs.
type Range struct {
	StartLine      int
	EndLine        int
	ChunkAlgorithm string
	FragmentType   string
}
