package models

import (
	"time"
)

// Tag represents a named label owned by exactly one directory.
// Name uniqueness within a directory is case-insensitive and enforced by the
// store's upsert path, not by a collation-aware index.
type Tag struct {
	ID          uint   `gorm:"primaryKey"`
	DirectoryID string `gorm:"type:text;not null;index:idx_directory_tag"`
	Name        string `gorm:"type:text;not null;index:idx_directory_tag"`
	Description string `gorm:"type:text"`

	LastUsedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Directory Directory `gorm:"foreignKey:DirectoryID;references:ID"`
	Links     []FileTag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}
