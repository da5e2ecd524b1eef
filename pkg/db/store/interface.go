package store

import (
	"context"
	"time"

	"github.com/mwantia/tagsync/pkg/db/models"
)

// RecordStore defines durable CRUD over one store instance, central or
// satellite. Implementations enforce the per-directory case-insensitive
// uniqueness of tag names and file paths at write time, comparing loaded
// candidates in memory rather than through query predicates.
//
// Snapshot reads (AllTags, AllFiles, AllAssociations) return the full table
// contents; an empty directoryID selects every directory, which is how
// satellite stores are read since their directory IDs were generated
// independently of the central store's.
type RecordStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error

	// Directory operations
	UpsertDirectory(ctx context.Context, path string) (*models.Directory, error)
	GetDirectory(ctx context.Context, path string) (*models.Directory, error)
	ListDirectories(ctx context.Context, activeOnly bool) ([]models.Directory, error)
	UpdateDirectory(ctx context.Context, dir *models.Directory) error

	// Tag operations
	UpsertTag(ctx context.Context, directoryID, name, description string, lastUsed time.Time) (*models.Tag, bool, error)
	UpdateTag(ctx context.Context, tag *models.Tag) error
	DeleteTag(ctx context.Context, directoryID, name string) error
	AllTags(ctx context.Context, directoryID string) ([]models.Tag, error)

	// File operations
	UpsertFile(ctx context.Context, directoryID, relativePath, fileName string, size int64, modifiedAt time.Time) (*models.FileRecord, bool, error)
	UpdateFile(ctx context.Context, file *models.FileRecord) error
	RemoveFile(ctx context.Context, id uint) error
	AllFiles(ctx context.Context, directoryID string) ([]models.FileRecord, error)

	// Association operations
	LinkFileTag(ctx context.Context, fileID, tagID uint) (bool, error)
	UnlinkFileTag(ctx context.Context, fileID, tagID uint) error
	AllAssociations(ctx context.Context, directoryID string) ([]models.FileTag, error)
	TagsFor(ctx context.Context, fileID uint) ([]models.Tag, error)
	FilesFor(ctx context.Context, tagID uint) ([]models.FileRecord, error)
}
