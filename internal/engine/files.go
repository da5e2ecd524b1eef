package engine

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// GetAllFilesInWatchedDirectories walks every active directory on disk and
// merges the discovered files with the central store's records by absolute
// path, attaching tag names where associations exist. Satellite folders are
// skipped. Walk failures on one directory are logged and do not abort the
// others.
func (e *Engine) GetAllFilesInWatchedDirectories(ctx context.Context) ([]FileInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collectFiles(ctx, nil)
}

// GetAllFilesWithTags returns only the discovered files that carry at least
// one tag.
func (e *Engine) GetAllFilesWithTags(ctx context.Context) ([]FileInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collectFiles(ctx, func(f FileInfo) bool { return f.IsTagged() })
}

// GetUntaggedFiles returns only the discovered files without any tag.
func (e *Engine) GetUntaggedFiles(ctx context.Context) ([]FileInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collectFiles(ctx, func(f FileInfo) bool { return !f.IsTagged() })
}

func (e *Engine) collectFiles(ctx context.Context, keep func(FileInfo) bool) ([]FileInfo, error) {
	dirs, err := e.central.ListDirectories(ctx, true)
	if err != nil {
		return nil, err
	}

	var results []FileInfo

	for i := range dirs {
		dir := &dirs[i]

		tagsByPath, err := e.tagLookup(ctx, dir.ID)
		if err != nil {
			return nil, err
		}

		walkErr := filepath.WalkDir(dir.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				e.log.Warn("walk error under %s: %v", dir.Path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if e.locator.IsSatelliteDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}

			rel, err := filepath.Rel(dir.Path, path)
			if err != nil {
				return nil
			}
			rel = strings.ReplaceAll(rel, `\`, "/")

			info, err := d.Info()
			if err != nil {
				return nil
			}

			fi := FileInfo{
				AbsolutePath:  path,
				RelativePath:  rel,
				DirectoryPath: dir.Path,
				FileName:      d.Name(),
				FileSize:      info.Size(),
				Tags:          tagsByPath[strings.ToLower(rel)],
			}
			if keep == nil || keep(fi) {
				results = append(results, fi)
			}
			return nil
		})
		if walkErr != nil {
			e.log.Warn("failed to walk %s: %v", dir.Path, walkErr)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].AbsolutePath < results[j].AbsolutePath
	})
	return results, nil
}

// tagLookup maps each of a directory's relative paths (case-folded) to the
// sorted tag names attached to it.
func (e *Engine) tagLookup(ctx context.Context, directoryID string) (map[string][]string, error) {
	files, err := e.central.AllFiles(ctx, directoryID)
	if err != nil {
		return nil, err
	}
	tags, err := e.central.AllTags(ctx, directoryID)
	if err != nil {
		return nil, err
	}
	links, err := e.central.AllAssociations(ctx, directoryID)
	if err != nil {
		return nil, err
	}

	tagNames := make(map[uint]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	pathByFile := make(map[uint]string, len(files))
	for _, f := range files {
		pathByFile[f.ID] = strings.ToLower(f.RelativePath)
	}

	lookup := make(map[string][]string)
	for _, l := range links {
		path, okFile := pathByFile[l.FileRecordID]
		name, okTag := tagNames[l.TagID]
		if !okFile || !okTag {
			continue
		}
		lookup[path] = append(lookup[path], name)
	}
	for _, names := range lookup {
		sort.Strings(names)
	}
	return lookup, nil
}
