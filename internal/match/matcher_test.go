package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwantia/tagsync/pkg/db/models"
)

func TestTagMatchIsCaseInsensitive(t *testing.T) {
	candidates := []models.Tag{
		{ID: 1, Name: "work"},
		{ID: 2, Name: "Vacation"},
	}

	found := Tag(&models.Tag{Name: "Work"}, candidates)
	require.NotNil(t, found)
	assert.Equal(t, uint(1), found.ID)

	found = Tag(&models.Tag{Name: "VACATION"}, candidates)
	require.NotNil(t, found)
	assert.Equal(t, uint(2), found.ID)

	assert.Nil(t, Tag(&models.Tag{Name: "urgent"}, candidates))
}

func TestFileMatchNormalizesSeparators(t *testing.T) {
	candidates := []models.FileRecord{
		{ID: 1, RelativePath: "photos/summer/a.jpg"},
	}

	found := File(&models.FileRecord{RelativePath: `Photos\Summer\A.JPG`}, candidates)
	require.NotNil(t, found)
	assert.Equal(t, uint(1), found.ID)

	assert.Nil(t, File(&models.FileRecord{RelativePath: "photos/winter/a.jpg"}, candidates))
}

func TestMergeTagLastUsedIsMonotonic(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		existing time.Time
		incoming time.Time
	}{
		{"incoming newer", older, newer},
		{"existing newer", newer, older},
		{"equal", newer, newer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged := MergeTag(
				models.Tag{Name: "work", LastUsedAt: tc.existing},
				models.Tag{Name: "Work", LastUsedAt: tc.incoming},
			)
			want := tc.existing
			if tc.incoming.After(want) {
				want = tc.incoming
			}
			assert.True(t, merged.LastUsedAt.Equal(want))
		})
	}
}

func TestMergeTagDescriptionFollowsNewerSide(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	merged := MergeTag(
		models.Tag{Name: "work", Description: "old", LastUsedAt: older},
		models.Tag{Name: "work", Description: "new", LastUsedAt: newer},
	)
	assert.Equal(t, "new", merged.Description)

	// The older side never overwrites a newer description.
	merged = MergeTag(
		models.Tag{Name: "work", Description: "current", LastUsedAt: newer},
		models.Tag{Name: "work", Description: "stale", LastUsedAt: older},
	)
	assert.Equal(t, "current", merged.Description)

	// An empty description is always filled in.
	merged = MergeTag(
		models.Tag{Name: "work", LastUsedAt: newer},
		models.Tag{Name: "work", Description: "anything", LastUsedAt: older},
	)
	assert.Equal(t, "anything", merged.Description)
}

func TestMergeFileSizeFollowsNewerModification(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	merged := MergeFile(
		models.FileRecord{RelativePath: "a.txt", FileSize: 10, LastModified: older},
		models.FileRecord{RelativePath: "a.txt", FileSize: 20, LastModified: newer},
	)
	assert.Equal(t, int64(20), merged.FileSize)
	assert.True(t, merged.LastModified.Equal(newer))

	merged = MergeFile(
		models.FileRecord{RelativePath: "a.txt", FileSize: 10, LastModified: newer},
		models.FileRecord{RelativePath: "a.txt", FileSize: 20, LastModified: older},
	)
	assert.Equal(t, int64(10), merged.FileSize)
	assert.True(t, merged.LastModified.Equal(newer))
}

func TestChangeDetection(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	same := models.Tag{Name: "work", Description: "d", LastUsedAt: ts}
	assert.False(t, TagChanged(same, same))
	assert.True(t, TagChanged(same, models.Tag{Name: "work", Description: "other", LastUsedAt: ts}))

	file := models.FileRecord{RelativePath: "a.txt", FileSize: 1, LastModified: ts}
	assert.False(t, FileChanged(file, file))
	assert.True(t, FileChanged(file, models.FileRecord{RelativePath: "a.txt", FileSize: 2, LastModified: ts}))
}
