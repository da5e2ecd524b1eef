package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwantia/tagsync/internal/match"
	"github.com/mwantia/tagsync/pkg/db/models"
)

// AddDirectory registers a watched directory in the central store, or
// reactivates it when it was soft-removed, then performs an implicit pull
// from its satellite locations. Idempotent beyond a timestamp refresh.
func (e *Engine) AddDirectory(ctx context.Context, path string) (*models.Directory, *PullResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path = e.resolvePath(path)
	dir, err := e.central.UpsertDirectory(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register directory %s: %w", path, err)
	}

	e.log.Info("watching directory %s", path)

	pull, err := e.pullFromFolder(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return dir, pull, nil
}

// RemoveDirectory soft-removes a watched directory. Tag and file data stay in
// the central store; the directory simply stops contributing to aggregated
// tag visibility until it is added again.
func (e *Engine) RemoveDirectory(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path = e.resolvePath(path)
	dir, err := e.central.GetDirectory(ctx, path)
	if err != nil {
		return err
	}
	if dir == nil || !dir.IsActive {
		return nil
	}

	dir.IsActive = false
	if err := e.central.UpdateDirectory(ctx, dir); err != nil {
		return fmt.Errorf("failed to deactivate directory %s: %w", path, err)
	}

	e.log.Info("stopped watching directory %s", path)
	return nil
}

// ListDirectories returns the watched directories known to the central store.
func (e *Engine) ListDirectories(ctx context.Context, activeOnly bool) ([]models.Directory, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.central.ListDirectories(ctx, activeOnly)
}

// owningDirectory finds the active directory containing absPath and the
// path of absPath relative to it. Nested watches resolve to the deepest
// matching directory.
func (e *Engine) owningDirectory(ctx context.Context, absPath string) (*models.Directory, string, error) {
	dirs, err := e.central.ListDirectories(ctx, true)
	if err != nil {
		return nil, "", err
	}

	var owner *models.Directory
	for i := range dirs {
		if !pathWithin(dirs[i].Path, absPath) {
			continue
		}
		if owner == nil || len(dirs[i].Path) > len(owner.Path) {
			owner = &dirs[i]
		}
	}
	if owner == nil {
		return nil, "", fmt.Errorf("path %s is not inside any watched directory", absPath)
	}

	rel, err := filepath.Rel(owner.Path, absPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to relativize %s against %s: %w", absPath, owner.Path, err)
	}
	return owner, match.NormalizePath(rel), nil
}

// pathWithin reports whether child is inside parent, compared
// case-insensitive on cleaned paths.
func pathWithin(parent, child string) bool {
	p := strings.ToLower(filepath.Clean(parent)) + string(filepath.Separator)
	c := strings.ToLower(filepath.Clean(child))
	return strings.HasPrefix(c, p)
}
