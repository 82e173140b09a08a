package searchapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmcp/amanmcp-flat/internal/codec"
	"github.com/amanmcp/amanmcp-flat/internal/config"
	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

type fakeEmbedder struct{ vec []float32 }

func (f fakeEmbedder) Embed(ctx context.Context, text, model string, task fragment.Task) ([]float32, error) {
	return f.vec, nil
}

func setupIndexedFolder(t *testing.T) (*config.Config, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	cfg := &config.Config{Folders: []string{dir}, EmbeddingModel: "m1"}

	indexPath, err := config.FolderIndexPath(dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(indexPath), 0o755))

	idx := fragment.NewFolderIndex(dir)
	idx.Files[filepath.Join(dir, "a.go")] = &fragment.File{
		Path: filepath.Join(dir, "a.go"), Filename: "a.go",
		Fragments: []fragment.Fragment{
			{StartLine: 1, EndLine: 3, Model: "m1", Task: fragment.TaskRetrievalDocument, Embedding: []float32{1, 0, 0}},
		},
	}
	require.NoError(t, codec.Write(indexPath, idx))

	return cfg, dir
}

func TestEmbedding_AttributesResultsToConfiguredRoot(t *testing.T) {
	cfg, dir := setupIndexedFolder(t)

	results, err := Embedding(context.Background(), cfg, fakeEmbedder{vec: []float32{1, 0, 0}}, "q", EmbeddingOptions{Model: "m1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dir, results[0].IndexRoot)
	assert.Equal(t, "folder", results[0].IndexKind)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
}

func TestClamp_AppliesFallbackAndBounds(t *testing.T) {
	assert.Equal(t, DefaultMaxResults, Clamp(0, DefaultMaxResults, 1, MaxMaxResults))
	assert.Equal(t, MaxMaxResults, Clamp(10000, DefaultMaxResults, 1, MaxMaxResults))
	assert.Equal(t, 5, Clamp(5, DefaultMaxResults, 1, MaxMaxResults))
}
