package models

import (
	"time"
)

// Directory represents a watched directory tracked by the central store.
// Directories are never hard-deleted; removal flips IsActive so that
// historical tag data and aggregation keys survive.
type Directory struct {
	ID   string `gorm:"primaryKey;type:text"`
	Path string `gorm:"type:text;not null;uniqueIndex"`

	IsActive   bool `gorm:"default:true"`
	LastSyncAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Tags  []Tag        `gorm:"foreignKey:DirectoryID;constraint:OnDelete:CASCADE"`
	Files []FileRecord `gorm:"foreignKey:DirectoryID;constraint:OnDelete:CASCADE"`
}
