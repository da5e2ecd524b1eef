// Package engine implements the reconciliation operations between the
// central record store and the per-directory satellite stores: Pull, Push,
// Cleanup, duplicate merge and file-existence verification.
//
// The engine is an explicitly constructed service object. It holds the one
// open handle to the central store; satellite stores are opened per
// operation, read fully into memory and closed again before any filesystem
// mutation, so their directories can be deleted afterwards.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/mwantia/tagsync/internal/satellite"
	"github.com/mwantia/tagsync/pkg/db/models"
	"github.com/mwantia/tagsync/pkg/db/store"
	"github.com/mwantia/tagsync/pkg/log"
)

// Options tunes engine behavior beyond the wired collaborators.
type Options struct {
	// PushPrune removes satellite rows without a central counterpart during
	// Push. Default off: satellites behave as append-only backups.
	PushPrune bool
}

// Engine coordinates all reconciliation work. Operations are serialized by a
// single advisory lock; the engine is not re-entrant.
type Engine struct {
	mu sync.Mutex

	central  store.RecordStore
	locator  *satellite.Locator
	deleter  *satellite.Deleter
	guard    PathGuard
	resolver TempResolver
	log      log.LoggerService
	opts     Options
}

// New constructs an engine around an already opened central store. Nil
// collaborators fall back to permissive defaults.
func New(central store.RecordStore, locator *satellite.Locator, deleter *satellite.Deleter, logger log.LoggerService, opts Options) *Engine {
	e := &Engine{
		central:  central,
		locator:  locator,
		deleter:  deleter,
		guard:    allowAllGuard{},
		resolver: identityResolver{},
		log:      logger,
		opts:     opts,
	}
	if e.locator == nil {
		e.locator = satellite.NewLocator("", "", 0)
	}
	if e.deleter == nil {
		e.deleter = satellite.NewDeleter(0, 0)
	}
	return e
}

// WithPathGuard wires the shell-integration collaborator.
func (e *Engine) WithPathGuard(g PathGuard) *Engine {
	if g != nil {
		e.guard = g
	}
	return e
}

// WithTempResolver wires the temp-results collaborator.
func (e *Engine) WithTempResolver(r TempResolver) *Engine {
	if r != nil {
		e.resolver = r
	}
	return e
}

// Close releases the central store handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.central.Close()
}

// resolvePath normalizes a caller-supplied path, translating temp copies
// back to their originals.
func (e *Engine) resolvePath(path string) string {
	if original, ok := e.resolver.ResolveOriginalPath(path); ok {
		path = original
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// touchSync refreshes the directory's last sync timestamp.
func (e *Engine) touchSync(ctx context.Context, dir *models.Directory) {
	dir.LastSyncAt = time.Now().UTC()
	if err := e.central.UpdateDirectory(ctx, dir); err != nil {
		e.log.Warn("failed to update sync timestamp for %s: %v", dir.Path, err)
	}
}

// snapshot is one satellite's full record set, loaded into memory so the
// store handle can be closed before anything else happens.
type snapshot struct {
	Tags  []models.Tag
	Files []models.FileRecord
	Links []models.FileTag
}

// readSnapshot opens a satellite store read-only in effect: it loads every
// table and closes the handle before returning. A failure to read leaves no
// handle behind.
func readSnapshot(ctx context.Context, dbPath string) (*snapshot, error) {
	sat, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer sat.Close()

	snap := &snapshot{}
	if snap.Tags, err = sat.AllTags(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to read tags from %s: %w", dbPath, err)
	}
	if snap.Files, err = sat.AllFiles(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to read files from %s: %w", dbPath, err)
	}
	if snap.Links, err = sat.AllAssociations(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to read associations from %s: %w", dbPath, err)
	}
	return snap, nil
}

// recordError appends a formatted message to an error list and logs it.
func (e *Engine) recordError(errs *[]string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.log.Error("%s", msg)
	*errs = append(*errs, msg)
}
