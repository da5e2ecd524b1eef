package satellite

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/mwantia/tagsync/pkg/db/store"
)

// Deleter removes satellite directories after making sure the process no
// longer holds handles into them. The dominant failure mode is self-locking:
// deleting a database file while our own read connection is still open.
type Deleter struct {
	settleDelay time.Duration
	retries     int
}

// NewDeleter creates a deleter. Zero values fall back to a 150ms settle delay
// and 3 removal attempts.
func NewDeleter(settleDelay time.Duration, retries int) *Deleter {
	if settleDelay <= 0 {
		settleDelay = 150 * time.Millisecond
	}
	if retries <= 0 {
		retries = 3
	}
	return &Deleter{settleDelay: settleDelay, retries: retries}
}

// ReleaseAllConnections forces a garbage collection pass so that any store
// handles already out of scope are finalized, then waits for the OS to drop
// the file locks. Callers must have closed their stores explicitly first;
// this only mops up.
func (d *Deleter) ReleaseAllConnections() {
	runtime.GC()
	time.Sleep(d.settleDelay)
}

// SafeDelete releases connections and removes the directory with bounded
// retry. It never panics; on failure it returns false and a descriptive
// error including the path, so the caller can record it and continue.
func (d *Deleter) SafeDelete(path string) (bool, error) {
	d.ReleaseAllConnections()

	var lastErr error
	for attempt := 1; attempt <= d.retries; attempt++ {
		if err := os.RemoveAll(path); err == nil {
			return true, nil
		} else {
			lastErr = err
		}
		time.Sleep(d.settleDelay)
	}

	if store.IsLockError(lastErr) {
		return false, fmt.Errorf("%w: could not delete %s: %v (%s)",
			store.ErrLockedResource, path, lastErr, store.LockedHint)
	}
	return false, fmt.Errorf("could not delete %s: %w", path, lastErr)
}
