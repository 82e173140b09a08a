package embedclient

import (
	"fmt"
	"log/slog"
	"sync"
)

// singleton is the lazily initialized, process-wide embedding client. It is
// keyed by (apiBaseUrl, apiKey, maxInFlight): a call with a different key
// after the first publishes a new client rather than reusing the old one,
// since those three values fully determine the client's identity.
var (
	singletonMu  sync.Mutex
	singleton    *Client
	singletonKey string
)

func key(cfg Config) string {
	return fmt.Sprintf("%s|%s|%d", cfg.APIBaseURL, cfg.APIKey, cfg.MaxInFlight)
}

// Get returns the process-wide Client for cfg, constructing it on first
// use. Thread-safe: concurrent first callers publish exactly one client.
func Get(cfg Config, logger *slog.Logger) *Client {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	k := key(cfg)
	if singleton != nil && singletonKey == k {
		return singleton
	}
	if singleton != nil {
		_ = singleton.Close()
	}
	singleton = New(cfg, logger)
	singletonKey = k
	return singleton
}

// Reset discards the process-wide singleton. Exposed for tests that need a
// clean client between cases.
func Reset() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton != nil {
		_ = singleton.Close()
	}
	singleton = nil
	singletonKey = ""
}
