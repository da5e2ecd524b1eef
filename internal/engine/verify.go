package engine

import (
	"context"
	"os"
	"sort"
	"strings"
)

// VerifyAndCleanupTaggedFiles walks every file record of the active
// directories in the central store and removes records whose backing file no
// longer exists on disk. Associations are removed before the record so that
// tag usage counts stay consistent at every step. Satellite stores are never
// touched, and user files are never deleted.
//
// Records of deactivated directories are skipped: their files are likely on
// disconnected media and soft removal promised to preserve their data.
func (e *Engine) VerifyAndCleanupTaggedFiles(ctx context.Context) (*VerificationResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &VerificationResult{}

	dirs, err := e.central.ListDirectories(ctx, true)
	if err != nil {
		return nil, err
	}

	affected := make(map[string]string)

	for i := range dirs {
		dir := &dirs[i]

		files, err := e.central.AllFiles(ctx, dir.ID)
		if err != nil {
			return nil, err
		}

		for j := range files {
			f := &files[j]
			res.TotalChecked++

			if fileExists(f.AbsolutePath(dir.Path)) {
				res.Existing++
				continue
			}
			res.Missing++

			tags, err := e.central.TagsFor(ctx, f.ID)
			if err != nil {
				e.recordError(&res.Errors, "failed to load tags for %s: %v", f.RelativePath, err)
				continue
			}
			for _, t := range tags {
				affected[strings.ToLower(t.Name)] = t.Name
			}

			if err := e.central.RemoveFile(ctx, f.ID); err != nil {
				e.recordError(&res.Errors, "failed to remove stale record %s: %v", f.RelativePath, err)
				continue
			}
			e.log.Debug("removed stale record %s (missing from %s)", f.RelativePath, dir.Path)
		}
	}

	for _, name := range affected {
		res.AffectedTags = append(res.AffectedTags, name)
	}
	sort.Strings(res.AffectedTags)

	e.log.Info("verified %d file records: %d existing, %d missing",
		res.TotalChecked, res.Existing, res.Missing)
	return res, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
