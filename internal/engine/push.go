package engine

import (
	"context"
	"fmt"

	"github.com/mwantia/tagsync/internal/match"
	"github.com/mwantia/tagsync/pkg/db/models"
	"github.com/mwantia/tagsync/pkg/db/store"
)

// PushToFolder mirrors the central store's records for a watched directory
// into its canonical satellite, creating the satellite if absent. Push is
// additive by default: satellite-only rows are left alone unless pruning is
// enabled. A satellite that cannot be opened fails the operation, since the
// caller asked for this one store explicitly.
func (e *Engine) PushToFolder(ctx context.Context, path string) (*PushResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pushToFolder(ctx, e.resolvePath(path))
}

func (e *Engine) pushToFolder(ctx context.Context, path string) (*PushResult, error) {
	res := &PushResult{}

	dir, err := e.central.GetDirectory(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("central store unavailable: %w", err)
	}
	if dir == nil {
		return nil, fmt.Errorf("directory %s is not watched", path)
	}

	loc := e.locator.Canonical(path)
	sat, err := store.Open(ctx, loc.DatabasePath)
	if err != nil {
		return nil, err
	}

	exportErr := e.exportTo(ctx, sat, dir, res)

	if err := sat.Close(); err != nil {
		e.recordError(&res.Errors, "failed to close satellite %s: %v", loc.DatabasePath, err)
	}
	e.deleter.ReleaseAllConnections()

	if exportErr != nil {
		return res, exportErr
	}

	e.touchSync(ctx, dir)
	e.log.Debug("pushed to %s: %d tags, %d files, %d associations",
		loc.DatabasePath, res.TagsExported, res.FilesExported, res.AssociationsExported)
	return res, nil
}

// exportTo writes the directory's central records into an open satellite
// store using the same match/merge logic as Pull, in reverse.
func (e *Engine) exportTo(ctx context.Context, sat store.RecordStore, dir *models.Directory, res *PushResult) error {
	satDir, err := sat.UpsertDirectory(ctx, dir.Path)
	if err != nil {
		return fmt.Errorf("failed to prepare satellite directory record: %w", err)
	}

	tags, err := e.central.AllTags(ctx, dir.ID)
	if err != nil {
		return fmt.Errorf("central store unavailable: %w", err)
	}
	files, err := e.central.AllFiles(ctx, dir.ID)
	if err != nil {
		return fmt.Errorf("central store unavailable: %w", err)
	}
	links, err := e.central.AllAssociations(ctx, dir.ID)
	if err != nil {
		return fmt.Errorf("central store unavailable: %w", err)
	}

	tagIDs := make(map[uint]uint, len(tags))
	for _, t := range tags {
		merged, wrote, err := sat.UpsertTag(ctx, satDir.ID, t.Name, t.Description, t.LastUsedAt)
		if err != nil {
			return fmt.Errorf("failed to export tag %q: %w", t.Name, err)
		}
		if wrote {
			res.TagsExported++
		}
		tagIDs[t.ID] = merged.ID
	}

	fileIDs := make(map[uint]uint, len(files))
	for _, f := range files {
		merged, wrote, err := sat.UpsertFile(ctx, satDir.ID, f.RelativePath, f.FileName, f.FileSize, f.LastModified)
		if err != nil {
			return fmt.Errorf("failed to export file %q: %w", f.RelativePath, err)
		}
		if wrote {
			res.FilesExported++
		}
		fileIDs[f.ID] = merged.ID
	}

	for _, l := range links {
		fileID, okFile := fileIDs[l.FileRecordID]
		tagID, okTag := tagIDs[l.TagID]
		if !okFile || !okTag {
			continue
		}
		created, err := sat.LinkFileTag(ctx, fileID, tagID)
		if err != nil {
			return fmt.Errorf("failed to export association: %w", err)
		}
		if created {
			res.AssociationsExported++
		}
	}

	if e.opts.PushPrune {
		return e.pruneSatellite(ctx, sat, tags, files, res)
	}
	return nil
}

// pruneSatellite deletes satellite rows that have no central counterpart.
// Only reached when the push_prune option is set; the default keeps
// satellites as append-only backups.
func (e *Engine) pruneSatellite(ctx context.Context, sat store.RecordStore, centralTags []models.Tag, centralFiles []models.FileRecord, res *PushResult) error {
	satTags, err := sat.AllTags(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to read satellite tags for pruning: %w", err)
	}
	for i := range satTags {
		if match.Tag(&satTags[i], centralTags) == nil {
			if err := sat.DeleteTag(ctx, satTags[i].DirectoryID, satTags[i].Name); err != nil {
				return fmt.Errorf("failed to prune tag %q: %w", satTags[i].Name, err)
			}
			res.TagsPruned++
		}
	}

	satFiles, err := sat.AllFiles(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to read satellite files for pruning: %w", err)
	}
	for i := range satFiles {
		if match.File(&satFiles[i], centralFiles) == nil {
			if err := sat.RemoveFile(ctx, satFiles[i].ID); err != nil {
				return fmt.Errorf("failed to prune file %q: %w", satFiles[i].RelativePath, err)
			}
			res.FilesPruned++
		}
	}
	return nil
}
