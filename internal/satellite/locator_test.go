package satellite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSatelliteDir(t *testing.T, watched, name string) string {
	t.Helper()
	dir := filepath.Join(watched, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDatabaseName), []byte("x"), 0644))
	return dir
}

func TestDiscoverOrdersCanonicalFirst(t *testing.T) {
	watched := t.TempDir()
	loc := NewLocator("", "", 0)

	seedSatelliteDir(t, watched, ".tagsync (2)")
	seedSatelliteDir(t, watched, ".tagsync")
	seedSatelliteDir(t, watched, ".tagsync (1)")

	found := loc.Discover(watched)
	require.Len(t, found, 3)
	assert.Equal(t, 0, found[0].Index)
	assert.Equal(t, 1, found[1].Index)
	assert.Equal(t, 2, found[2].Index)
	assert.False(t, found[0].IsDuplicate())
	assert.True(t, found[1].IsDuplicate())
}

func TestDuplicatesExcludeCanonical(t *testing.T) {
	watched := t.TempDir()
	loc := NewLocator("", "", 0)

	seedSatelliteDir(t, watched, ".tagsync")
	seedSatelliteDir(t, watched, ".tagsync (3)")

	dups := loc.Duplicates(watched)
	require.Len(t, dups, 1)
	assert.Equal(t, 3, dups[0].Index)
}

func TestDiscoverRespectsScanLimit(t *testing.T) {
	watched := t.TempDir()
	loc := NewLocator("", "", 2)

	seedSatelliteDir(t, watched, ".tagsync (1)")
	seedSatelliteDir(t, watched, ".tagsync (5)")

	found := loc.Discover(watched)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Index)
}

func TestDiscoverIgnoresFolderWithoutDatabase(t *testing.T) {
	watched := t.TempDir()
	loc := NewLocator("", "", 0)

	require.NoError(t, os.MkdirAll(filepath.Join(watched, ".tagsync"), 0755))

	assert.Empty(t, loc.Discover(watched))
}

func TestIsSatelliteDir(t *testing.T) {
	loc := NewLocator("", "", 0)

	assert.True(t, loc.IsSatelliteDir(".tagsync"))
	assert.True(t, loc.IsSatelliteDir(".tagsync (7)"))
	assert.False(t, loc.IsSatelliteDir(".tagsync (21)"))
	assert.False(t, loc.IsSatelliteDir("photos"))
}

func TestSafeDeleteRemovesDirectory(t *testing.T) {
	watched := t.TempDir()
	dir := seedSatelliteDir(t, watched, ".tagsync (1)")

	d := NewDeleter(time.Millisecond, 1)
	ok, err := d.SafeDelete(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
