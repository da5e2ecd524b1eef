package store

import (
	"errors"
	"strings"
)

var (
	// ErrStorageUnavailable marks a store location that cannot be opened.
	// Fatal to the current operation when it is the central store.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrLockedResource marks a store or directory held by another process.
	// Non-fatal; operations record it and continue with their siblings.
	ErrLockedResource = errors.New("resource locked by another process")

	// ErrRecordConflict marks a uniqueness violation that slipped past the
	// upsert path. Surfaced as a diagnostic, never a crash.
	ErrRecordConflict = errors.New("record conflict")
)

// LockedHint is appended to user-facing messages when a lock is detected.
const LockedHint = "close other applications accessing this database and retry"

// IsLockError reports whether err looks like a file or database lock held
// elsewhere. SQLite and the OS report these through message text only, so
// detection is best-effort pattern matching.
func IsLockError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLockedResource) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"database is locked",
		"database table is locked",
		"resource busy",
		"being used by another process",
		"permission denied",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
