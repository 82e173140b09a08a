// Package config loads and saves the JSON configuration file that names
// every folder and git repo the engine indexes, the extension/filename
// filters applied during discovery, and the embedding backend endpoint.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
	"github.com/amanmcp/amanmcp-flat/internal/walk"
)

// AppDirName is the directory under the user's home directory holding
// config.json and every index file.
const AppDirName = ".amanmcp-flat"

// CurrentVersion is written into new configs and accepted on load; it does
// not gate anything yet, but gives a future migration path a field to key
// on.
const CurrentVersion = "1"

// Config is the full on-disk shape of config.json.
type Config struct {
	Version             string   `json:"version"`
	Folders             []string `json:"folders"`
	GitRepos            []string `json:"gitRepos"`
	WhitelistExtensions []string `json:"whitelistExtensions"`
	BlacklistExtensions []string `json:"blacklistExtensions"`
	BlacklistFilenames  []string `json:"blacklistFilenames"`
	EmbeddingModel      string   `json:"embeddingModel"`
	APIBaseURL          string   `json:"apiBaseUrl"`
	APIKey              string   `json:"apiKey"`
}

// Default returns a Config with empty target lists and no filters.
// EmbeddingModel and APIBaseURL default to empty, meaning "must be supplied
// before the engine can embed anything" rather than a baked-in endpoint.
func Default() *Config {
	return &Config{Version: CurrentVersion}
}

// Dir returns ~/.<appdir>.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", amanerrors.Config("failed to resolve home directory", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// Path returns ~/.<appdir>/config.json.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// FolderIndexPath returns the index file path for a configured folder:
// ~/.<appdir>/folders/<sanitized-folder-path>.flat, where sanitization
// replaces '/' and '\' with '_'.
func FolderIndexPath(folder string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "folders", sanitize(folder)+".flat"), nil
}

// RepoIndexPath returns the index file path for a configured git repo:
// ~/.<appdir>/repos/<repo-basename>.flat.
func RepoIndexPath(repo string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "repos", filepath.Base(repo)+".flat"), nil
}

func sanitize(path string) string {
	r := strings.NewReplacer("/", "_", "\\", "_")
	return r.Replace(path)
}

// Load reads config.json from path, applies environment overrides, and
// validates the result. A missing file is not an error: Default() is
// returned instead, so a first run with no config yet still starts up.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, amanerrors.Config(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, amanerrors.Config(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault loads from the standard ~/.<appdir>/config.json location.
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// applyEnvOverrides applies OPENAI_API_BASE_URL / OPENAI_BASE_URL, in that
// order of precedence. Neither is persisted back to disk by Save.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
		return
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
}

// Validate checks that every configured folder exists and every configured
// git repo exists and contains a .git entry. A bad entry fails loudly
// rather than being silently skipped.
func (c *Config) Validate() error {
	for _, folder := range c.Folders {
		info, err := os.Stat(folder)
		if err != nil {
			return amanerrors.Config(fmt.Sprintf("configured folder %q is not accessible", folder), err)
		}
		if !info.IsDir() {
			return amanerrors.Config(fmt.Sprintf("configured folder %q is not a directory", folder), nil)
		}
	}
	for _, repo := range c.GitRepos {
		info, err := os.Stat(repo)
		if err != nil {
			return amanerrors.Config(fmt.Sprintf("configured git repo %q is not accessible", repo), err)
		}
		if !info.IsDir() {
			return amanerrors.Config(fmt.Sprintf("configured git repo %q is not a directory", repo), nil)
		}
		if _, err := os.Stat(filepath.Join(repo, ".git")); err != nil {
			return amanerrors.Config(fmt.Sprintf("configured git repo %q has no .git directory", repo), err)
		}
	}
	return nil
}

// Save writes cfg to path via a temp-file-then-rename so a crash mid-write
// never corrupts the previous config.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return amanerrors.Config("failed to marshal config", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return amanerrors.IO(fmt.Sprintf("failed to create config directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return amanerrors.IO("failed to create temp config file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return amanerrors.IO("failed to write temp config file", err)
	}
	if err := tmp.Close(); err != nil {
		return amanerrors.IO("failed to close temp config file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return amanerrors.IO(fmt.Sprintf("failed to replace config file %s", path), err)
	}
	return nil
}

// Filter builds the walk.Filter corresponding to this config's extension
// and filename rules.
func (c *Config) Filter() walk.Filter {
	return walk.Filter{
		WhitelistExtensions: c.WhitelistExtensions,
		BlacklistExtensions: c.BlacklistExtensions,
		BlacklistFilenames:  c.BlacklistFilenames,
	}
}
