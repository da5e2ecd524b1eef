// Package satellite locates per-directory record stores and deletes their
// backing directories without tripping over our own open file handles.
package satellite

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the hidden subfolder holding a directory's satellite
	// store, directly under the watched directory.
	DefaultDirName = ".tagsync"

	// DefaultDatabaseName is the store file inside the satellite folder.
	DefaultDatabaseName = "tags.db"

	// DefaultScanLimit bounds the numbered-duplicate scan. File-sync conflict
	// copies rarely go past single digits; 20 leaves headroom.
	DefaultScanLimit = 20
)

// Location is one candidate satellite store for a watched directory.
// Index 0 is the canonical location; higher indices are numbered duplicates
// produced by third-party sync conflicts, e.g. ".tagsync (1)".
type Location struct {
	Index        int
	Dir          string
	DatabasePath string
}

// IsDuplicate reports whether the location is a numbered duplicate rather
// than the canonical satellite.
func (l Location) IsDuplicate() bool {
	return l.Index > 0
}

// Locator enumerates satellite locations for watched directories.
type Locator struct {
	dirName   string
	dbName    string
	scanLimit int
}

// NewLocator creates a locator. Zero values fall back to the defaults.
func NewLocator(dirName, dbName string, scanLimit int) *Locator {
	if dirName == "" {
		dirName = DefaultDirName
	}
	if dbName == "" {
		dbName = DefaultDatabaseName
	}
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	return &Locator{dirName: dirName, dbName: dbName, scanLimit: scanLimit}
}

// Canonical returns the canonical satellite location for a watched directory,
// whether or not it exists on disk.
func (l *Locator) Canonical(watchedPath string) Location {
	dir := filepath.Join(watchedPath, l.dirName)
	return Location{Index: 0, Dir: dir, DatabasePath: filepath.Join(dir, l.dbName)}
}

// Discover returns every satellite location that exists on disk for a watched
// directory, canonical first, then duplicates by ascending index.
func (l *Locator) Discover(watchedPath string) []Location {
	var found []Location

	canonical := l.Canonical(watchedPath)
	if containsDatabase(canonical) {
		found = append(found, canonical)
	}

	found = append(found, l.Duplicates(watchedPath)...)
	return found
}

// Duplicates returns the numbered duplicate locations that exist on disk,
// excluding the canonical one, by ascending index.
func (l *Locator) Duplicates(watchedPath string) []Location {
	var found []Location
	for i := 1; i <= l.scanLimit; i++ {
		dir := filepath.Join(watchedPath, fmt.Sprintf("%s (%d)", l.dirName, i))
		loc := Location{Index: i, Dir: dir, DatabasePath: filepath.Join(dir, l.dbName)}
		if containsDatabase(loc) {
			found = append(found, loc)
		}
	}
	return found
}

// IsSatelliteDir reports whether name is a satellite folder name, canonical
// or duplicate. Used by filesystem walks to skip store internals.
func (l *Locator) IsSatelliteDir(name string) bool {
	if name == l.dirName {
		return true
	}
	for i := 1; i <= l.scanLimit; i++ {
		if name == fmt.Sprintf("%s (%d)", l.dirName, i) {
			return true
		}
	}
	return false
}

func containsDatabase(loc Location) bool {
	info, err := os.Stat(loc.DatabasePath)
	return err == nil && !info.IsDir()
}
