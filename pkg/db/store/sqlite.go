package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mwantia/tagsync/internal/match"
	"github.com/mwantia/tagsync/pkg/db/migrations"
	"github.com/mwantia/tagsync/pkg/db/models"
)

// SQLiteStore implements RecordStore using SQLite. One instance maps to one
// backing database file, either the central store or a satellite.
type SQLiteStore struct {
	db     *gorm.DB
	path   string
	closed bool
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// Path returns the backing database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed record store. The backing file
// and its parent directory are created on first connect if absent.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrStorageUnavailable)
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create store directory: %v", ErrStorageUnavailable, err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open sqlite database %s: %v", ErrStorageUnavailable, cfg.Path, err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Open creates a store at path, connects it and runs migrations. This is the
// usual entry point for both central and satellite stores.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	s, err := NewSQLiteStore(SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		if IsLockError(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrLockedResource, path, err)
		}
		return nil, fmt.Errorf("%w: migration failed for %s: %v", ErrStorageUnavailable, path, err)
	}
	return s, nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// SQLite only supports 1 writer; a single connection also guarantees the
	// file handle count we have to release before deleting a satellite.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close releases the database handle. Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	if s.closed {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	s.closed = true
	return sqlDB.Close()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Directory operations

// UpsertDirectory finds a directory by case-insensitive path match or creates
// it. Existing inactive directories are reactivated.
func (s *SQLiteStore) UpsertDirectory(ctx context.Context, path string) (*models.Directory, error) {
	existing, err := s.GetDirectory(ctx, path)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing != nil {
		existing.IsActive = true
		existing.LastSyncAt = now
		if err := s.UpdateDirectory(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	dir := &models.Directory{
		ID:         uuid.NewString(),
		Path:       path,
		IsActive:   true,
		LastSyncAt: now,
	}
	if err := s.db.WithContext(ctx).Create(dir).Error; err != nil {
		return nil, fmt.Errorf("failed to create directory record: %w", err)
	}
	return dir, nil
}

// GetDirectory returns the directory whose path matches case-insensitive,
// or nil when absent. Candidates are compared in memory.
func (s *SQLiteStore) GetDirectory(ctx context.Context, path string) (*models.Directory, error) {
	dirs, err := s.ListDirectories(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range dirs {
		if match.SamePath(dirs[i].Path, path) {
			return &dirs[i], nil
		}
	}
	return nil, nil
}

func (s *SQLiteStore) ListDirectories(ctx context.Context, activeOnly bool) ([]models.Directory, error) {
	var dirs []models.Directory
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("path").Find(&dirs).Error
	return dirs, err
}

func (s *SQLiteStore) UpdateDirectory(ctx context.Context, dir *models.Directory) error {
	return s.db.WithContext(ctx).Save(dir).Error
}

// Tag operations

// UpsertTag finds a tag by case-insensitive name within the directory and
// merges description/lastUsed into it, or inserts a new row. The bool result
// reports whether anything was written.
func (s *SQLiteStore) UpsertTag(ctx context.Context, directoryID, name, description string, lastUsed time.Time) (*models.Tag, bool, error) {
	candidates, err := s.AllTags(ctx, directoryID)
	if err != nil {
		return nil, false, err
	}

	incoming := models.Tag{
		DirectoryID: directoryID,
		Name:        name,
		Description: description,
		LastUsedAt:  lastUsed.UTC(),
	}

	if existing := match.Tag(&incoming, candidates); existing != nil {
		merged := match.MergeTag(*existing, incoming)
		if !match.TagChanged(*existing, merged) {
			return existing, false, nil
		}
		if err := s.UpdateTag(ctx, &merged); err != nil {
			return nil, false, err
		}
		return &merged, true, nil
	}

	if err := s.db.WithContext(ctx).Create(&incoming).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("%w: tag %q in directory %s", ErrRecordConflict, name, directoryID)
		}
		return nil, false, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	return &incoming, true, nil
}

func (s *SQLiteStore) UpdateTag(ctx context.Context, tag *models.Tag) error {
	return s.db.WithContext(ctx).Save(tag).Error
}

// DeleteTag removes the tag matched by case-insensitive name along with all
// of its file associations.
func (s *SQLiteStore) DeleteTag(ctx context.Context, directoryID, name string) error {
	candidates, err := s.AllTags(ctx, directoryID)
	if err != nil {
		return err
	}
	probe := models.Tag{Name: name}
	existing := match.Tag(&probe, candidates)
	if existing == nil {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", existing.ID).Delete(&models.FileTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete associations for tag %q: %w", name, err)
		}
		return tx.Delete(&models.Tag{}, existing.ID).Error
	})
}

func (s *SQLiteStore) AllTags(ctx context.Context, directoryID string) ([]models.Tag, error) {
	var tags []models.Tag
	query := s.db.WithContext(ctx)
	if directoryID != "" {
		query = query.Where("directory_id = ?", directoryID)
	}
	err := query.Find(&tags).Error
	return tags, err
}

// File operations

// UpsertFile finds a file record by case-insensitive relative path within the
// directory and merges size/modification time, or inserts a new row.
func (s *SQLiteStore) UpsertFile(ctx context.Context, directoryID, relativePath, fileName string, size int64, modifiedAt time.Time) (*models.FileRecord, bool, error) {
	candidates, err := s.AllFiles(ctx, directoryID)
	if err != nil {
		return nil, false, err
	}

	incoming := models.FileRecord{
		DirectoryID:  directoryID,
		RelativePath: match.NormalizePath(relativePath),
		FileName:     fileName,
		FileSize:     size,
		LastModified: modifiedAt.UTC(),
	}

	if existing := match.File(&incoming, candidates); existing != nil {
		merged := match.MergeFile(*existing, incoming)
		if !match.FileChanged(*existing, merged) {
			return existing, false, nil
		}
		if err := s.UpdateFile(ctx, &merged); err != nil {
			return nil, false, err
		}
		return &merged, true, nil
	}

	if err := s.db.WithContext(ctx).Create(&incoming).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("%w: file %q in directory %s", ErrRecordConflict, relativePath, directoryID)
		}
		return nil, false, fmt.Errorf("failed to create file record %q: %w", relativePath, err)
	}
	return &incoming, true, nil
}

func (s *SQLiteStore) UpdateFile(ctx context.Context, file *models.FileRecord) error {
	return s.db.WithContext(ctx).Save(file).Error
}

// RemoveFile deletes the file record and all of its tag associations.
func (s *SQLiteStore) RemoveFile(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_record_id = ?", id).Delete(&models.FileTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete associations for file %d: %w", id, err)
		}
		return tx.Delete(&models.FileRecord{}, id).Error
	})
}

func (s *SQLiteStore) AllFiles(ctx context.Context, directoryID string) ([]models.FileRecord, error) {
	var files []models.FileRecord
	query := s.db.WithContext(ctx)
	if directoryID != "" {
		query = query.Where("directory_id = ?", directoryID)
	}
	err := query.Find(&files).Error
	return files, err
}

// Association operations

// LinkFileTag creates the association unless it already exists. Returns true
// when a new row was written.
func (s *SQLiteStore) LinkFileTag(ctx context.Context, fileID, tagID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.FileTag{}).
		Where("file_record_id = ? AND tag_id = ?", fileID, tagID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	link := models.FileTag{FileRecordID: fileID, TagID: tagID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against ourselves; the link exists either way.
			return false, nil
		}
		return false, fmt.Errorf("failed to link file %d to tag %d: %w", fileID, tagID, err)
	}
	return true, nil
}

func (s *SQLiteStore) UnlinkFileTag(ctx context.Context, fileID, tagID uint) error {
	return s.db.WithContext(ctx).
		Where("file_record_id = ? AND tag_id = ?", fileID, tagID).
		Delete(&models.FileTag{}).Error
}

// AllAssociations returns the association snapshot. When directoryID is set,
// the result is restricted to links whose file record belongs to it.
func (s *SQLiteStore) AllAssociations(ctx context.Context, directoryID string) ([]models.FileTag, error) {
	var links []models.FileTag
	query := s.db.WithContext(ctx)
	if directoryID != "" {
		query = query.
			Joins("JOIN file_records ON file_records.id = file_tags.file_record_id").
			Where("file_records.directory_id = ?", directoryID)
	}
	err := query.Find(&links).Error
	return links, err
}

// TagsFor returns all tags attached to a file record.
func (s *SQLiteStore) TagsFor(ctx context.Context, fileID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).
		Joins("JOIN file_tags ON file_tags.tag_id = tags.id").
		Where("file_tags.file_record_id = ?", fileID).
		Find(&tags).Error
	return tags, err
}

// FilesFor returns all file records carrying a tag.
func (s *SQLiteStore) FilesFor(ctx context.Context, tagID uint) ([]models.FileRecord, error) {
	var files []models.FileRecord
	err := s.db.WithContext(ctx).
		Joins("JOIN file_tags ON file_tags.file_record_id = file_records.id").
		Where("file_tags.tag_id = ?", tagID).
		Find(&files).Error
	return files, err
}
