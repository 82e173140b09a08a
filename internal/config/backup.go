package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

const (
	// MaxBackups is the maximum number of config backups to keep.
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files.
	BackupSuffix = ".bak"
)

// Backup writes a timestamped copy of the config file at path, then prunes
// backups beyond MaxBackups. Returns "" with no error if path does not
// exist yet (nothing to back up).
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", amanerrors.IO(fmt.Sprintf("failed to read config for backup: %s", path), err)
	}

	backupPath := fmt.Sprintf("%s%s.%s", path, BackupSuffix, time.Now().Format("20060102-150405.000000000"))
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", amanerrors.IO("failed to write config backup", err)
	}

	cleanupOldBackups(path)
	return backupPath, nil
}

// Backups lists backup files for path, newest first.
func Backups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, amanerrors.IO(fmt.Sprintf("failed to list config directory %s", dir), err)
	}

	prefix := base + BackupSuffix + "."
	var backups []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(backups, func(i, j int) bool {
		infoI, errI := os.Stat(backups[i])
		infoJ, errJ := os.Stat(backups[j])
		if errI != nil || errJ != nil {
			return false
		}
		return infoI.ModTime().After(infoJ.ModTime())
	})
	return backups, nil
}

// cleanupOldBackups removes backups beyond MaxBackups, keeping the newest;
// best-effort, since a failed prune should never fail the backup that
// triggered it.
func cleanupOldBackups(path string) {
	backups, err := Backups(path)
	if err != nil || len(backups) <= MaxBackups {
		return
	}
	for _, b := range backups[MaxBackups:] {
		_ = os.Remove(b)
	}
}

// Restore replaces the config file at path with the contents of
// backupPath, first backing up whatever is currently at path.
func Restore(path, backupPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return amanerrors.Config(fmt.Sprintf("backup file not found: %s", backupPath), err)
	}

	if _, err := Backup(path); err != nil {
		return err
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return amanerrors.IO(fmt.Sprintf("failed to read backup %s", backupPath), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return amanerrors.IO(fmt.Sprintf("failed to create config directory %s", dir), err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return amanerrors.Config(fmt.Sprintf("backup file %s is not valid config JSON", backupPath), err)
	}

	return Save(path, &cfg)
}
