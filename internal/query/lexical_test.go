package query

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmcp/amanmcp-flat/internal/fragment"
)

func requireRipgrep(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("rg"); err != nil {
		t.Skip("ripgrep (rg) not installed; skipping lexical search test")
	}
}

func TestLexical_FindsMatchesAcrossFiles(t *testing.T) {
	requireRipgrep(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc NeedleFunc() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package b\n// no match here\n"), 0o644))

	idx := fragment.NewFolderIndex(dir)
	idx.Files[filepath.Join(dir, "a.go")] = &fragment.File{Path: filepath.Join(dir, "a.go"), Filename: "a.go"}
	idx.Files[filepath.Join(dir, "b.go")] = &fragment.File{Path: filepath.Join(dir, "b.go"), Filename: "b.go"}

	hits := Lexical(context.Background(), idx, "NeedleFunc", LexicalOptions{})
	require.Len(t, hits, 1)
	assert.Equal(t, "a.go", hits[0].File.Filename)
	assert.Equal(t, 3, hits[0].LineNumber)
}

func TestLexical_NoMatchesYieldsEmptyNotError(t *testing.T) {
	requireRipgrep(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))

	idx := fragment.NewFolderIndex(dir)
	idx.Files[filepath.Join(dir, "a.go")] = &fragment.File{Path: filepath.Join(dir, "a.go"), Filename: "a.go"}

	hits := Lexical(context.Background(), idx, "NoSuchPattern", LexicalOptions{})
	assert.Empty(t, hits)
}

func TestLexical_MaxResultsCapsOutput(t *testing.T) {
	requireRipgrep(t)

	dir := t.TempDir()
	content := "needle\nneedle\nneedle\nneedle\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte(content), 0o644))

	idx := fragment.NewFolderIndex(dir)
	idx.Files[filepath.Join(dir, "a.go")] = &fragment.File{Path: filepath.Join(dir, "a.go"), Filename: "a.go"}

	hits := Lexical(context.Background(), idx, "needle", LexicalOptions{MaxResults: 2})
	assert.Len(t, hits, 2)
}

func TestMergeLexical_SortsByFilenameThenLine(t *testing.T) {
	fa := &fragment.File{Filename: "a.go"}
	fb := &fragment.File{Filename: "b.go"}
	a := []LexicalHit{{File: fa, LineNumber: 5}, {File: fa, LineNumber: 2}}
	b := []LexicalHit{{File: fb, LineNumber: 1}}
	merged := MergeLexical([]IndexLexicalResult{{Hits: a}, {Hits: b}})
	require.Len(t, merged, 3)
	assert.Equal(t, "a.go", merged[0].File.Filename)
	assert.Equal(t, 2, merged[0].LineNumber)
	assert.Equal(t, "a.go", merged[1].File.Filename)
	assert.Equal(t, 5, merged[1].LineNumber)
	assert.Equal(t, "b.go", merged[2].File.Filename)
}
