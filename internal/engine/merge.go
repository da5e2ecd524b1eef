package engine

import (
	"context"
)

// MergeAllDuplicateDatabases consolidates numbered duplicate satellites for
// every active directory. For each directory with duplicates it pulls from
// the canonical satellite and all duplicates, releases handles, then deletes
// only the duplicates; the canonical satellite is never touched. Failures
// are isolated per directory and the loop continues.
func (e *Engine) MergeAllDuplicateDatabases(ctx context.Context) (*MergeResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &MergeResult{}

	dirs, err := e.central.ListDirectories(ctx, true)
	if err != nil {
		return nil, err
	}

	for i := range dirs {
		dir := &dirs[i]

		dups := e.locator.Duplicates(dir.Path)
		if len(dups) == 0 {
			continue
		}
		res.DirectoriesWithDuplicates++
		res.DuplicateDatabasesFound += len(dups)

		e.log.Info("merging %d duplicate satellites for %s", len(dups), dir.Path)

		pull, err := e.pullFromFolder(ctx, dir.Path)
		if err != nil {
			// Central store failure; no point continuing with other dirs.
			return nil, err
		}
		res.TagsMerged += pull.TagsImported
		res.FilesMerged += pull.FilesImported
		res.AssociationsMerged += pull.AssociationsImported
		res.Errors = append(res.Errors, pull.Errors...)

		for _, dup := range dups {
			ok, derr := e.deleter.SafeDelete(dup.Dir)
			if ok {
				res.DuplicateDatabasesDeleted++
				continue
			}
			e.recordError(&res.Errors, "merge for %s: %v", dir.Path, derr)
		}
	}

	return res, nil
}
