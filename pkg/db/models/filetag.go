package models

import (
	"time"
)

// FileTag associates one file record with one tag. Both sides always belong
// to the same directory; the unique index makes link creation idempotent.
type FileTag struct {
	ID           uint `gorm:"primaryKey"`
	FileRecordID uint `gorm:"not null;uniqueIndex:idx_file_tag"`
	TagID        uint `gorm:"not null;uniqueIndex:idx_file_tag"`

	CreatedAt time.Time

	// Relationships
	FileRecord FileRecord `gorm:"foreignKey:FileRecordID;references:ID"`
	Tag        Tag        `gorm:"foreignKey:TagID;references:ID"`
}
