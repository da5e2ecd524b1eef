// Package match decides whether records from two different stores denote the
// same tag or file, and computes the merged field set when they do.
//
// All comparisons are ordinal case-insensitive and happen in memory. Pushing
// case folding into a storage-layer query predicate is deliberately avoided:
// the backing engine cannot translate locale-aware comparisons reliably.
package match

import (
	"strings"

	"github.com/mwantia/tagsync/pkg/db/models"
)

// SameTagName reports whether two tag names denote the same tag.
func SameTagName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// SamePath reports whether two relative paths denote the same file.
// Paths are compared after normalizing separators to forward slashes.
func SamePath(a, b string) bool {
	return strings.EqualFold(NormalizePath(a), NormalizePath(b))
}

// NormalizePath converts backslashes to forward slashes and trims any
// leading separator so that satellite records written on different
// platforms compare equal.
func NormalizePath(p string) string {
	return strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
}

// Tag finds the candidate with the same name as source, or nil.
func Tag(source *models.Tag, candidates []models.Tag) *models.Tag {
	for i := range candidates {
		if SameTagName(source.Name, candidates[i].Name) {
			return &candidates[i]
		}
	}
	return nil
}

// File finds the candidate with the same relative path as source, or nil.
func File(source *models.FileRecord, candidates []models.FileRecord) *models.FileRecord {
	for i := range candidates {
		if SamePath(source.RelativePath, candidates[i].RelativePath) {
			return &candidates[i]
		}
	}
	return nil
}

// MergeTag folds incoming into existing. LastUsedAt is the max of both sides;
// the description follows whichever side was used more recently, unless the
// newer side has none.
func MergeTag(existing, incoming models.Tag) models.Tag {
	merged := existing
	if incoming.LastUsedAt.After(existing.LastUsedAt) {
		merged.LastUsedAt = incoming.LastUsedAt
		if incoming.Description != "" {
			merged.Description = incoming.Description
		}
	}
	if merged.Description == "" {
		merged.Description = incoming.Description
	}
	return merged
}

// MergeFile folds incoming into existing. LastModified is the max of both
// sides; the size follows the side with the newer modification time.
func MergeFile(existing, incoming models.FileRecord) models.FileRecord {
	merged := existing
	if incoming.LastModified.After(existing.LastModified) {
		merged.LastModified = incoming.LastModified
		merged.FileSize = incoming.FileSize
	}
	return merged
}

// TagChanged reports whether merging incoming into existing would alter
// any mutable field. Used to count real imports versus no-op matches.
func TagChanged(existing, merged models.Tag) bool {
	return !merged.LastUsedAt.Equal(existing.LastUsedAt) ||
		merged.Description != existing.Description
}

// FileChanged reports whether merging incoming into existing would alter
// any mutable field.
func FileChanged(existing, merged models.FileRecord) bool {
	return !merged.LastModified.Equal(existing.LastModified) ||
		merged.FileSize != existing.FileSize
}
