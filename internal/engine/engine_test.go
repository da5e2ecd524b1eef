package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/tagsync/internal/config"
	"github.com/mwantia/tagsync/internal/satellite"
	"github.com/mwantia/tagsync/pkg/db/store"
	"github.com/mwantia/tagsync/pkg/log"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	central, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "central.db"))
	require.NoError(t, err)

	logger := log.NewLoggerService("test", config.LogConfig{
		Level:      "FATAL",
		TimeFormat: "15:04:05",
		NoColor:    true,
	})

	e := New(central,
		satellite.NewLocator("", "", 0),
		satellite.NewDeleter(time.Millisecond, 1),
		logger,
		Options{},
	)
	t.Cleanup(func() { e.Close() })
	return e
}

// seedSatellite writes a satellite store containing the given tag->files
// mapping for a watched directory. Returns the satellite folder.
func seedSatellite(t *testing.T, watched, folderName string, tagsOnFiles map[string][]string) string {
	t.Helper()
	ctx := context.Background()

	dir := filepath.Join(watched, folderName)
	sat, err := store.Open(ctx, filepath.Join(dir, satellite.DefaultDatabaseName))
	require.NoError(t, err)
	defer sat.Close()

	satDir, err := sat.UpsertDirectory(ctx, watched)
	require.NoError(t, err)

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for tagName, files := range tagsOnFiles {
		tag, _, err := sat.UpsertTag(ctx, satDir.ID, tagName, "", ts)
		require.NoError(t, err)
		for _, rel := range files {
			file, _, err := sat.UpsertFile(ctx, satDir.ID, rel, filepath.Base(rel), 42, ts)
			require.NoError(t, err)
			_, err = sat.LinkFileTag(ctx, file.ID, tag.ID)
			require.NoError(t, err)
		}
	}
	return dir
}

func writeFile(t *testing.T, dir, rel string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
	return path
}

func TestPullIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	seedSatellite(t, watched, satellite.DefaultDirName, map[string][]string{
		"work": {"docs/report.txt"},
	})

	first, err := e.PullFromFolder(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, 1, first.DatabasesPulled)
	assert.Equal(t, 1, first.TagsImported)
	assert.Equal(t, 1, first.FilesImported)
	assert.Equal(t, 1, first.AssociationsImported)
	assert.Empty(t, first.Errors)

	second, err := e.PullFromFolder(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TagsImported)
	assert.Equal(t, 0, second.FilesImported)
	assert.Equal(t, 0, second.AssociationsImported)
}

func TestPullMergesCaseInsensitiveTagIdentity(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	path := writeFile(t, watched, "docs/report.txt")
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "work", "")
	require.NoError(t, err)

	seedSatellite(t, watched, satellite.DefaultDirName, map[string][]string{
		"Work": {"docs/report.txt"},
	})

	_, err = e.PullFromFolder(ctx, watched)
	require.NoError(t, err)

	infos, err := e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1, "satellite 'Work' and central 'work' are the same tag")
	assert.Equal(t, 1, infos[0].TotalUsageCount)
}

func TestPullToleratesUnreadableSatellite(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	seedSatellite(t, watched, satellite.DefaultDirName, map[string][]string{
		"work": {"a.txt"},
	})

	// A duplicate whose database is garbage must not abort the pull.
	badDir := filepath.Join(watched, satellite.DefaultDirName+" (1)")
	require.NoError(t, os.MkdirAll(badDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(badDir, satellite.DefaultDatabaseName),
		[]byte("this is not a sqlite database at all, padded to look like one................"), 0644))

	res, err := e.PullFromFolder(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DatabasesFound)
	assert.Equal(t, 1, res.DatabasesPulled)
	assert.Equal(t, 1, res.TagsImported)
	assert.NotEmpty(t, res.Errors)
}

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	path := writeFile(t, watched, "f.txt")
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "A", "")
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "B", "")
	require.NoError(t, err)

	push, err := e.PushToFolder(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, 2, push.TagsExported)
	assert.Equal(t, 1, push.FilesExported)
	assert.Equal(t, 2, push.AssociationsExported)

	// Pulling back what we just pushed imports nothing new.
	pull, err := e.PullFromFolder(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, 1, pull.DatabasesPulled)
	assert.Equal(t, 0, pull.TagsImported)
	assert.Equal(t, 0, pull.FilesImported)
	assert.Equal(t, 0, pull.AssociationsImported)

	tags, err := e.GetTagsForFile(ctx, path)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestCleanupFolderResetsSatellites(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)

	base := seedSatellite(t, watched, satellite.DefaultDirName, map[string][]string{
		"photo": {"a.jpg"},
	})
	dup := seedSatellite(t, watched, satellite.DefaultDirName+" (1)", map[string][]string{
		"urgent": {"a.jpg"},
	})

	res, err := e.CleanupFolder(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, 2, res.DirectoriesDeleted)
	assert.Equal(t, 2, res.Pull.DatabasesPulled)
	assert.Empty(t, res.Errors)

	// Duplicate gone, canonical recreated by the final push.
	_, err = os.Stat(dup)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, satellite.DefaultDatabaseName))
	assert.NoError(t, err)

	// Everything pulled survived in the central store.
	infos, err := e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestMergeAllDuplicateDatabases(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	// Register while no satellites exist yet; the central store starts empty.
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)

	base := seedSatellite(t, watched, satellite.DefaultDirName, map[string][]string{
		"photo": {"a.jpg"},
	})
	dup := seedSatellite(t, watched, satellite.DefaultDirName+" (1)", map[string][]string{
		"photo":  {"b.jpg"},
		"urgent": {"a.jpg"},
	})

	res, err := e.MergeAllDuplicateDatabases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DirectoriesWithDuplicates)
	assert.Equal(t, 1, res.DuplicateDatabasesFound)
	assert.Equal(t, 1, res.DuplicateDatabasesDeleted)
	assert.Equal(t, 2, res.TagsMerged)
	assert.Equal(t, 2, res.FilesMerged)
	assert.Equal(t, 3, res.AssociationsMerged)
	assert.Empty(t, res.Errors)

	// Duplicate deleted, canonical untouched.
	_, err = os.Stat(dup)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(base)
	assert.NoError(t, err)

	infos, err := e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "photo", infos[0].Name)
	assert.Equal(t, 2, infos[0].TotalUsageCount, "photo used by a.jpg and b.jpg")
	assert.Equal(t, "urgent", infos[1].Name)
	assert.Equal(t, 1, infos[1].TotalUsageCount)
}

func TestVerifyRemovesStaleRecords(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	keepPath := writeFile(t, watched, "keep.txt")
	gonePath := writeFile(t, watched, "gone.txt")

	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, keepPath, "shared", "")
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, gonePath, "shared", "")
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, gonePath, "only-here", "")
	require.NoError(t, err)

	require.NoError(t, os.Remove(gonePath))

	res, err := e.VerifyAndCleanupTaggedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalChecked)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, []string{"only-here", "shared"}, res.AffectedTags)

	// The stale record and its associations are gone; the tag attached only
	// to the missing file is now an orphan and disappears from the overview.
	infos, err := e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "shared", infos[0].Name)
	assert.Equal(t, 1, infos[0].TotalUsageCount)
}

func TestOrphanTagsAreExcluded(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	path := writeFile(t, watched, "f.txt")
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)

	_, err = e.CreateTag(ctx, watched, "unused", "nothing uses this yet")
	require.NoError(t, err)

	infos, err := e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos, "a tag with zero associations stays hidden")

	_, err = e.AddTagToFile(ctx, path, "unused", "")
	require.NoError(t, err)

	infos, err = e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "unused", infos[0].Name)
	assert.Equal(t, "nothing uses this yet", infos[0].Description)
}

func TestRemoveDirectoryHidesItsTags(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	path := writeFile(t, watched, "f.txt")
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "work", "")
	require.NoError(t, err)

	require.NoError(t, e.RemoveDirectory(ctx, watched))

	infos, err := e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// Soft removal: data is preserved and reappears on re-add.
	_, _, err = e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	infos, err = e.GetAllAvailableTags(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestAddDirectoryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	first, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	second, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	dirs, err := e.ListDirectories(ctx, true)
	require.NoError(t, err)
	assert.Len(t, dirs, 1)
}

func TestDeleteTagCascades(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	path := writeFile(t, watched, "f.txt")
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "work", "")
	require.NoError(t, err)

	require.NoError(t, e.DeleteTag(ctx, watched, "WORK"))

	tags, err := e.GetTagsForFile(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestRenameTagKeepsAssociations(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	path := writeFile(t, watched, "f.txt")
	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "work", "")
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, path, "other", "")
	require.NoError(t, err)

	require.NoError(t, e.RenameTag(ctx, watched, "work", "business"))

	err = e.RenameTag(ctx, watched, "business", "OTHER")
	require.Error(t, err, "renaming onto an existing tag must fail")

	tags, err := e.GetTagsForFile(ctx, path)
	require.NoError(t, err)
	names := []string{tags[0].Name, tags[1].Name}
	assert.Contains(t, names, "business")
	assert.Contains(t, names, "other")
}

func TestGetUntaggedFiles(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	tagged := writeFile(t, watched, "tagged.txt")
	writeFile(t, watched, "plain.txt")

	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, tagged, "work", "")
	require.NoError(t, err)

	// A satellite folder inside the watched directory is store internals,
	// never a user file.
	_, err = e.PushToFolder(ctx, watched)
	require.NoError(t, err)

	withTags, err := e.GetAllFilesWithTags(ctx)
	require.NoError(t, err)
	require.Len(t, withTags, 1)
	assert.Equal(t, "tagged.txt", withTags[0].FileName)
	assert.Equal(t, []string{"work"}, withTags[0].Tags)

	untagged, err := e.GetUntaggedFiles(ctx)
	require.NoError(t, err)
	require.Len(t, untagged, 1)
	assert.Equal(t, "plain.txt", untagged[0].FileName)

	all, err := e.GetAllFilesInWatchedDirectories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddTagToFileResolvesTempPaths(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	watched := t.TempDir()

	original := writeFile(t, watched, "f.txt")
	tempCopy := filepath.Join(t.TempDir(), "f.txt")

	e.WithTempResolver(staticResolver{tempCopy: original})

	_, _, err := e.AddDirectory(ctx, watched)
	require.NoError(t, err)
	_, err = e.AddTagToFile(ctx, tempCopy, "work", "")
	require.NoError(t, err)

	tags, err := e.GetTagsForFile(ctx, original)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "work", tags[0].Name)
}

func TestAddTagToFileRejectsUnwatchedPaths(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	outside := writeFile(t, t.TempDir(), "f.txt")
	_, err := e.AddTagToFile(ctx, outside, "work", "")
	require.Error(t, err)
}

// staticResolver resolves exactly one temp path.
type staticResolver map[string]string

func (r staticResolver) ResolveOriginalPath(tempPath string) (string, bool) {
	original, ok := r[tempPath]
	return original, ok
}
