// Package indexlock provides the advisory cross-process lock that keeps
// index-all and watch from running concurrently against the same index
// file (spec §5 shared-resource policy).
package indexlock

import (
	"fmt"

	"github.com/gofrs/flock"

	"github.com/amanmcp/amanmcp-flat/internal/amanerrors"
)

// Lock wraps a flock.Flock scoped to one index file. The lock file lives
// alongside the index file with a ".lock" suffix so the index file itself
// is never opened for locking purposes.
type Lock struct {
	fl *flock.Flock
}

// New returns a Lock for the index file at indexPath. The lock is not
// acquired until TryLock or MustTryLock is called.
func New(indexPath string) *Lock {
	return &Lock{fl: flock.New(indexPath + ".lock")}
}

// TryLock attempts to acquire the lock without blocking. It returns false
// (no error) if another process already holds it.
func (l *Lock) TryLock() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, amanerrors.IO("failed to acquire index lock", err).WithDetail("path", l.fl.Path())
	}
	return ok, nil
}

// Unlock releases the lock. Safe to call even if the lock was never
// acquired.
func (l *Lock) Unlock() error {
	if err := l.fl.Unlock(); err != nil {
		return amanerrors.IO("failed to release index lock", err)
	}
	return nil
}

// MustTryLock acquires the lock or returns a descriptive error suitable for
// direct CLI/server surfacing.
func (l *Lock) MustTryLock() error {
	ok, err := l.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return amanerrors.IO(fmt.Sprintf("index %q is locked by another process", l.fl.Path()), nil)
	}
	return nil
}
