package models

import (
	"path/filepath"
	"time"
)

// FileRecord represents metadata for a tagged file inside a watched directory.
// RelativePath is the identity key: it is relative to the owning directory and
// compared case-insensitive. A file moved on disk becomes a new record.
type FileRecord struct {
	ID           uint   `gorm:"primaryKey"`
	DirectoryID  string `gorm:"type:text;not null;index:idx_directory_path"`
	RelativePath string `gorm:"type:text;not null;index:idx_directory_path"`
	FileName     string `gorm:"type:text;not null"`

	FileSize     int64 `gorm:"not null"`
	LastModified time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Directory Directory `gorm:"foreignKey:DirectoryID;references:ID"`
	Links     []FileTag `gorm:"foreignKey:FileRecordID;constraint:OnDelete:CASCADE"`
}

// AbsolutePath joins the owning directory's path with the record's relative path.
func (f *FileRecord) AbsolutePath(directoryPath string) string {
	return filepath.Join(directoryPath, filepath.FromSlash(f.RelativePath))
}
