package engine

// PullResult reports one satellite-to-central import pass.
type PullResult struct {
	DatabasesFound       int
	DatabasesPulled      int
	TagsImported         int
	FilesImported        int
	AssociationsImported int
	Errors               []string
}

// PushResult reports one central-to-satellite export pass.
type PushResult struct {
	TagsExported         int
	FilesExported        int
	AssociationsExported int
	TagsPruned           int
	FilesPruned          int
	Errors               []string
}

// CleanupResult reports a full reset of a directory's satellites:
// pull everything, delete every satellite, push one clean copy back.
type CleanupResult struct {
	DirectoriesDeleted int
	Pull               PullResult
	Push               PushResult
	Errors             []string
}

// MergeResult reports duplicate-satellite consolidation across all active
// directories.
type MergeResult struct {
	DirectoriesWithDuplicates int
	DuplicateDatabasesFound   int
	DuplicateDatabasesDeleted int
	TagsMerged                int
	FilesMerged               int
	AssociationsMerged        int
	Errors                    []string
}

// VerificationResult reports a stale-record sweep of the central store.
type VerificationResult struct {
	TotalChecked int
	Existing     int
	Missing      int
	AffectedTags []string
	Errors       []string
}

// TagInfo is one logical tag aggregated across active directories by
// case-insensitive name.
type TagInfo struct {
	Name              string
	Description       string
	TotalUsageCount   int
	SourceDirectories []string
}

// FileInfo is one file discovered in a watched directory, merged with its
// central record when one exists.
type FileInfo struct {
	AbsolutePath  string
	RelativePath  string
	DirectoryPath string
	FileName      string
	FileSize      int64
	Tags          []string
}

// IsTagged reports whether the file carries at least one tag.
func (f FileInfo) IsTagged() bool {
	return len(f.Tags) > 0
}
