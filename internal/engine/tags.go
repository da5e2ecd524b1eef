package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mwantia/tagsync/internal/match"
	"github.com/mwantia/tagsync/pkg/db/models"
)

// GetAllAvailableTags groups central tags by case-insensitive name across all
// active directories, summing association counts. Tags whose summed usage is
// zero are excluded: a tag nobody applied anywhere is noise in a picker.
func (e *Engine) GetAllAvailableTags(ctx context.Context) ([]TagInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	dirs, err := e.central.ListDirectories(ctx, true)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*TagInfo)

	for i := range dirs {
		dir := &dirs[i]

		tags, err := e.central.AllTags(ctx, dir.ID)
		if err != nil {
			return nil, err
		}
		links, err := e.central.AllAssociations(ctx, dir.ID)
		if err != nil {
			return nil, err
		}

		usage := make(map[uint]int)
		for _, l := range links {
			usage[l.TagID]++
		}

		for _, t := range tags {
			key := strings.ToLower(t.Name)
			g, ok := groups[key]
			if !ok {
				g = &TagInfo{Name: t.Name, Description: t.Description}
				groups[key] = g
			}
			if g.Description == "" {
				g.Description = t.Description
			}
			g.TotalUsageCount += usage[t.ID]
			g.SourceDirectories = append(g.SourceDirectories, dir.Path)
		}
	}

	var infos []TagInfo
	for _, g := range groups {
		if g.TotalUsageCount == 0 {
			continue
		}
		infos = append(infos, *g)
	}
	sort.Slice(infos, func(i, j int) bool {
		return strings.ToLower(infos[i].Name) < strings.ToLower(infos[j].Name)
	})
	return infos, nil
}

// AddTagToFile attaches a tag to a file, creating both the file record and
// the tag lazily. The path may be a temp copy; it is resolved back to the
// original first. The file must exist and live inside a watched directory.
func (e *Engine) AddTagToFile(ctx context.Context, path, tagName, description string) (*models.Tag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(tagName) == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}

	path = e.resolvePath(path)
	if !e.guard.IsPathInsideWatchedDirectory(path) {
		return nil, fmt.Errorf("path %s is not inside a watched directory", path)
	}

	dir, rel, err := e.owningDirectory(ctx, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot tag %s: %w", path, err)
	}

	file, _, err := e.central.UpsertFile(ctx, dir.ID, rel, filepath.Base(path), info.Size(), info.ModTime())
	if err != nil {
		return nil, err
	}
	tag, _, err := e.central.UpsertTag(ctx, dir.ID, tagName, description, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := e.central.LinkFileTag(ctx, file.ID, tag.ID); err != nil {
		return nil, err
	}

	e.log.Debug("tagged %s with %q", path, tag.Name)
	return tag, nil
}

// RemoveTagFromFile detaches a tag from a file. Missing file records or tags
// make this a no-op.
func (e *Engine) RemoveTagFromFile(ctx context.Context, path, tagName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	path = e.resolvePath(path)
	dir, rel, err := e.owningDirectory(ctx, path)
	if err != nil {
		return err
	}

	file, tag, err := e.findFileAndTag(ctx, dir, rel, tagName)
	if err != nil || file == nil || tag == nil {
		return err
	}
	return e.central.UnlinkFileTag(ctx, file.ID, tag.ID)
}

// GetTagsForFile returns the tags attached to a file, resolving temp-copy
// paths transparently. A file without a record has no tags.
func (e *Engine) GetTagsForFile(ctx context.Context, path string) ([]models.Tag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path = e.resolvePath(path)
	dir, rel, err := e.owningDirectory(ctx, path)
	if err != nil {
		return nil, err
	}

	files, err := e.central.AllFiles(ctx, dir.ID)
	if err != nil {
		return nil, err
	}
	probe := models.FileRecord{RelativePath: rel}
	file := match.File(&probe, files)
	if file == nil {
		return nil, nil
	}
	return e.central.TagsFor(ctx, file.ID)
}

// CreateTag creates a standalone tag in a watched directory without
// attaching it to any file. It stays invisible to GetAllAvailableTags until
// its first use.
func (e *Engine) CreateTag(ctx context.Context, directoryPath, name, description string) (*models.Tag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("tag name must not be empty")
	}

	dir, err := e.requireDirectory(ctx, directoryPath)
	if err != nil {
		return nil, err
	}

	tag, _, err := e.central.UpsertTag(ctx, dir.ID, name, description, time.Now().UTC())
	return tag, err
}

// DeleteTag removes a tag by name from a watched directory, cascading to its
// file associations.
func (e *Engine) DeleteTag(ctx context.Context, directoryPath, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	dir, err := e.requireDirectory(ctx, directoryPath)
	if err != nil {
		return err
	}
	return e.central.DeleteTag(ctx, dir.ID, name)
}

// RenameTag updates a tag's name in place, keeping every association. The
// new name must not collide with another tag in the same directory.
func (e *Engine) RenameTag(ctx context.Context, directoryPath, oldName, newName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("tag name must not be empty")
	}

	dir, err := e.requireDirectory(ctx, directoryPath)
	if err != nil {
		return err
	}

	tags, err := e.central.AllTags(ctx, dir.ID)
	if err != nil {
		return err
	}

	probe := models.Tag{Name: oldName}
	tag := match.Tag(&probe, tags)
	if tag == nil {
		return fmt.Errorf("tag %q not found in %s", oldName, dir.Path)
	}

	if !match.SameTagName(oldName, newName) {
		collision := models.Tag{Name: newName}
		if existing := match.Tag(&collision, tags); existing != nil {
			return fmt.Errorf("tag %q already exists in %s", newName, dir.Path)
		}
	}

	tag.Name = newName
	return e.central.UpdateTag(ctx, tag)
}

func (e *Engine) requireDirectory(ctx context.Context, path string) (*models.Directory, error) {
	dir, err := e.central.GetDirectory(ctx, e.resolvePath(path))
	if err != nil {
		return nil, err
	}
	if dir == nil || !dir.IsActive {
		return nil, fmt.Errorf("directory %s is not watched", path)
	}
	return dir, nil
}

func (e *Engine) findFileAndTag(ctx context.Context, dir *models.Directory, rel, tagName string) (*models.FileRecord, *models.Tag, error) {
	files, err := e.central.AllFiles(ctx, dir.ID)
	if err != nil {
		return nil, nil, err
	}
	tags, err := e.central.AllTags(ctx, dir.ID)
	if err != nil {
		return nil, nil, err
	}
	fileProbe := models.FileRecord{RelativePath: rel}
	tagProbe := models.Tag{Name: tagName}
	return match.File(&fileProbe, files), match.Tag(&tagProbe, tags), nil
}
