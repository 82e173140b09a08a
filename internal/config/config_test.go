package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Empty(t, cfg.Folders)
	assert.Empty(t, cfg.EmbeddingModel)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "project")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	path := filepath.Join(dir, "config.json")

	cfg := &Config{
		Version:             CurrentVersion,
		Folders:             []string{folder},
		WhitelistExtensions: []string{".go"},
		BlacklistFilenames:  []string{"*.lock"},
		EmbeddingModel:      "text-embedding-3-small",
		APIBaseURL:          "https://api.openai.com/v1",
		APIKey:              "sk-test",
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Folders, loaded.Folders)
	assert.Equal(t, cfg.EmbeddingModel, loaded.EmbeddingModel)
	assert.Equal(t, cfg.APIKey, loaded.APIKey)
}

func TestLoad_MissingFolderIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := &Config{Version: CurrentVersion, Folders: []string{filepath.Join(dir, "does-not-exist")}}
	require.NoError(t, Save(path, cfg))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, amanerrors.Is(err, amanerrors.CategoryConfig))
}

func TestLoad_GitRepoWithoutDotGitIsConfigError(t *testing.T) {
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	path := filepath.Join(dir, "config.json")
	cfg := &Config{Version: CurrentVersion, GitRepos: []string{repo}}
	require.NoError(t, Save(path, cfg))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, amanerrors.Is(err, amanerrors.CategoryConfig))
}

func TestLoad_GitRepoWithDotGitPasses(t *testing.T) {
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
	path := filepath.Join(dir, "config.json")
	cfg := &Config{Version: CurrentVersion, GitRepos: []string{repo}}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{repo}, loaded.GitRepos)
}

func TestLoad_EnvOverridesAPIBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := &Config{Version: CurrentVersion, APIBaseURL: "https://configured.example/v1"}
	require.NoError(t, Save(path, cfg))

	t.Setenv("OPENAI_API_BASE_URL", "https://override.example/v1")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.example/v1", loaded.APIBaseURL)

	// Written config on disk is untouched.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "configured.example")
}

func TestLoad_SecondaryEnvOverrideUsedWhenPrimaryUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, Save(path, Default()))

	t.Setenv("OPENAI_BASE_URL", "https://secondary.example/v1")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://secondary.example/v1", loaded.APIBaseURL)
}

func TestLoad_InvalidJSONIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, amanerrors.Is(err, amanerrors.CategoryConfig))
}

func TestFolderIndexPath_SanitizesSlashes(t *testing.T) {
	path, err := FolderIndexPath("/home/user/my-project")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("folders", "_home_user_my-project.flat")))
}

func TestRepoIndexPath_UsesBasename(t *testing.T) {
	path, err := RepoIndexPath("/home/user/repos/amanmcp-flat")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("repos", "amanmcp-flat.flat")))
}

func TestFilter_BuildsFromConfigRules(t *testing.T) {
	cfg := &Config{
		WhitelistExtensions: []string{".go"},
		BlacklistExtensions: []string{".tmp"},
		BlacklistFilenames:  []string{"*.lock"},
	}
	f := cfg.Filter()
	assert.True(t, f.ShouldInclude("main.go"))
	assert.False(t, f.ShouldInclude("main.tmp"))
	assert.False(t, f.ShouldInclude("yarn.lock"))
}
