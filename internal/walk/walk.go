// Package walk discovers the files an index build or update should consider:
// a recursive filesystem walk filtered by the configured extension
// whitelist/blacklist and filename blacklist (spec §4.5), enriched with
// .gitignore awareness so ignored paths never reach the chunker.
package walk

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/amanmcp/amanmcp-flat/internal/gitignore"
)

// filenamePatternCacheSize bounds the LRU cache of blacklist filename
// match results, preventing unbounded growth across long watch runs
// over many configs in one process.
const filenamePatternCacheSize = 256

var filenamePatternCache, _ = lru.New[string, bool](filenamePatternCacheSize)

// Filter holds the include/exclude configuration evaluated by ShouldInclude.
type Filter struct {
	WhitelistExtensions []string
	BlacklistExtensions []string
	BlacklistFilenames  []string
}

// ShouldInclude reports whether path passes the configured filters: its
// lowercase extension must not be in BlacklistExtensions; its basename must
// not match any BlacklistFilenames pattern (patterns support exactly one
// '*' wildcard); if WhitelistExtensions is non-empty, the extension must
// also be present there.
func (f Filter) ShouldInclude(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, bl := range f.BlacklistExtensions {
		if strings.ToLower(bl) == ext {
			return false
		}
	}

	base := filepath.Base(path)
	for _, pattern := range f.BlacklistFilenames {
		if matchesPattern(base, pattern) {
			return false
		}
	}

	if len(f.WhitelistExtensions) > 0 {
		found := false
		for _, wl := range f.WhitelistExtensions {
			if strings.ToLower(wl) == ext {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// matchesPattern reports whether name matches pattern, a basename pattern
// supporting exactly one '*' wildcard (e.g. "*.lock", "id_*"). Results are
// cached in a bounded LRU keyed by "pattern\x00name" since the same
// pattern/name pairs recur heavily across a directory tree.
func matchesPattern(name, pattern string) bool {
	key := pattern + "\x00" + name
	if v, ok := filenamePatternCache.Get(key); ok {
		return v
	}

	var result bool
	if i := strings.IndexByte(pattern, '*'); i >= 0 {
		prefix := pattern[:i]
		suffix := pattern[i+1:]
		result = len(name) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
	} else {
		result = name == pattern
	}

	filenamePatternCache.Add(key, result)
	return result
}

// Discover walks root recursively and returns every path passing filter,
// sorted lexicographically. Directories matching a gitignore rule (when
// present) are pruned entirely rather than descended into.
func Discover(root string, filter Filter) ([]string, error) {
	matcher := loadGitignore(root)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.Match(rel, false) {
			return nil
		}
		if filter.ShouldInclude(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func loadGitignore(root string) *gitignore.Matcher {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	m := gitignore.New()
	for _, p := range gitignore.ParsePatterns(string(data)) {
		m.AddPattern(p)
	}
	return m
}
