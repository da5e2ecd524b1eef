package engine

import (
	"context"
)

// CleanupFolder fully resets a directory's satellites: pull everything into
// the central store, delete every satellite location found (canonical and
// duplicates), then push one clean satellite back. The delete and push
// phases run even when the pull reported partial errors, so a single locked
// duplicate cannot leave the user stuck with a broken satellite set.
func (e *Engine) CleanupFolder(ctx context.Context, path string) (*CleanupResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path = e.resolvePath(path)
	res := &CleanupResult{}

	pull, err := e.pullFromFolder(ctx, path)
	if err != nil {
		return nil, err
	}
	res.Pull = *pull

	// Pull released all handles; the discovered directories are now safe to
	// remove as far as this process is concerned.
	for _, loc := range e.locator.Discover(path) {
		ok, derr := e.deleter.SafeDelete(loc.Dir)
		if ok {
			res.DirectoriesDeleted++
			continue
		}
		e.recordError(&res.Errors, "cleanup of %s: %v", path, derr)
	}

	push, err := e.pushToFolder(ctx, path)
	if push != nil {
		res.Push = *push
	}
	if err != nil {
		e.recordError(&res.Errors, "failed to recreate satellite for %s: %v", path, err)
	}

	e.log.Info("cleanup for %s: %d satellite directories deleted", path, res.DirectoriesDeleted)
	return res, nil
}
