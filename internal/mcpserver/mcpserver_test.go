package mcpserver

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

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text, model string, task fragment.Task) ([]float32, error) {
	return f.vec, f.err
}

func setupIndexedFolder(t *testing.T) (*config.Config, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc Needle() {}\n"), 0o644))

	cfg := &config.Config{Version: config.CurrentVersion, Folders: []string{dir}, EmbeddingModel: "m1"}

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

func TestHandleEmbeddingSearch_ReturnsRankedHits(t *testing.T) {
	cfg, dir := setupIndexedFolder(t)
	s := NewServer(cfg, fakeEmbedder{vec: []float32{1, 0, 0}}, nil)

	_, output, err := s.handleEmbeddingSearch(context.Background(), nil, EmbeddingSearchInput{Query: "needle function"})
	require.NoError(t, err)
	require.Len(t, output.Results, 1)
	assert.Equal(t, filepath.Join(dir, "a.go"), output.Results[0].FilePath)
	assert.Equal(t, dir, output.Results[0].IndexRoot)
	assert.Equal(t, "folder", output.Results[0].IndexKind)
}

func TestHandleEmbeddingSearch_EmptyQueryIsInvalidParams(t *testing.T) {
	cfg, _ := setupIndexedFolder(t)
	s := NewServer(cfg, fakeEmbedder{vec: []float32{1, 0, 0}}, nil)

	_, _, err := s.handleEmbeddingSearch(context.Background(), nil, EmbeddingSearchInput{})
	require.Error(t, err)
}

func TestHandleEmbeddingSearch_NoEmbedderIsUnavailable(t *testing.T) {
	cfg, _ := setupIndexedFolder(t)
	s := NewServer(cfg, nil, nil)

	_, _, err := s.handleEmbeddingSearch(context.Background(), nil, EmbeddingSearchInput{Query: "needle"})
	require.Error(t, err)
}

func TestHandleRipgrepSearch_EmptyPatternIsInvalidParams(t *testing.T) {
	cfg, _ := setupIndexedFolder(t)
	s := NewServer(cfg, fakeEmbedder{vec: []float32{1, 0, 0}}, nil)

	_, _, err := s.handleRipgrepSearch(context.Background(), nil, RipgrepSearchInput{})
	require.Error(t, err)
}
