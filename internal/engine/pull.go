package engine

import (
	"context"
	"fmt"

	"github.com/mwantia/tagsync/pkg/db/models"
	"github.com/mwantia/tagsync/pkg/db/store"
)

// PullFromFolder imports every satellite store of a watched directory into
// the central store. Discovery covers the canonical satellite plus numbered
// duplicates; each is loaded fully into memory and closed before the next is
// touched. An unreadable satellite is recorded and skipped, never aborting
// the others. Pull is additive: nothing is deleted on either side.
func (e *Engine) PullFromFolder(ctx context.Context, path string) (*PullResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pullFromFolder(ctx, e.resolvePath(path))
}

func (e *Engine) pullFromFolder(ctx context.Context, path string) (*PullResult, error) {
	res := &PullResult{}

	dir, err := e.central.UpsertDirectory(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("central store unavailable: %w", err)
	}

	locations := e.locator.Discover(path)
	res.DatabasesFound = len(locations)

	for _, loc := range locations {
		snap, err := readSnapshot(ctx, loc.DatabasePath)
		if err != nil {
			if store.IsLockError(err) {
				e.recordError(&res.Errors, "satellite %s is locked: %v (%s)",
					loc.DatabasePath, err, store.LockedHint)
			} else {
				e.recordError(&res.Errors, "failed to read satellite %s: %v",
					loc.DatabasePath, err)
			}
			continue
		}

		if err := e.applySnapshot(ctx, dir, snap, res); err != nil {
			// Central writes failing is fatal, unlike satellite reads.
			return nil, err
		}
		res.DatabasesPulled++
	}

	// Callers may delete the source directories next; make sure no handle of
	// ours is still pointing into them.
	e.deleter.ReleaseAllConnections()

	e.touchSync(ctx, dir)
	e.log.Debug("pulled %d/%d satellites for %s: %d tags, %d files, %d associations",
		res.DatabasesPulled, res.DatabasesFound, path,
		res.TagsImported, res.FilesImported, res.AssociationsImported)
	return res, nil
}

// applySnapshot merges one satellite snapshot into the central store. The
// satellite's row IDs were generated independently, so records are matched
// by identity (case-insensitive name or relative path) and the resulting
// central IDs are carried through an ID map for the association pass.
func (e *Engine) applySnapshot(ctx context.Context, dir *models.Directory, snap *snapshot, res *PullResult) error {
	tagIDs := make(map[uint]uint, len(snap.Tags))
	for _, t := range snap.Tags {
		merged, wrote, err := e.central.UpsertTag(ctx, dir.ID, t.Name, t.Description, t.LastUsedAt)
		if err != nil {
			return fmt.Errorf("failed to import tag %q: %w", t.Name, err)
		}
		if wrote {
			res.TagsImported++
		}
		tagIDs[t.ID] = merged.ID
	}

	fileIDs := make(map[uint]uint, len(snap.Files))
	for _, f := range snap.Files {
		merged, wrote, err := e.central.UpsertFile(ctx, dir.ID, f.RelativePath, f.FileName, f.FileSize, f.LastModified)
		if err != nil {
			return fmt.Errorf("failed to import file %q: %w", f.RelativePath, err)
		}
		if wrote {
			res.FilesImported++
		}
		fileIDs[f.ID] = merged.ID
	}

	for _, l := range snap.Links {
		fileID, okFile := fileIDs[l.FileRecordID]
		tagID, okTag := tagIDs[l.TagID]
		if !okFile || !okTag {
			// Dangling association in the satellite; nothing to attach it to.
			continue
		}
		created, err := e.central.LinkFileTag(ctx, fileID, tagID)
		if err != nil {
			return fmt.Errorf("failed to import association: %w", err)
		}
		if created {
			res.AssociationsImported++
		}
	}
	return nil
}
