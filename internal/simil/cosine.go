// Package simil implements the similarity math used by semantic search:
// cosine similarity between two dense embedding vectors.
package simil

import (
	"math"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

// Cosine returns the cosine similarity of a and b. Both vectors must have
// the same length or InvalidArgument is returned. A zero-magnitude vector
// short-circuits to 0.0 rather than dividing by zero.
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, amanerrors.InvalidArgument("cosine: vector length mismatch")
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
