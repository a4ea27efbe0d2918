package models

import (
	"fmt"

	"gorm.io/gorm"
)

// DocumentFile is a file stored within a document folder. The upload itself
// lives on disk under StoredName; Name is unique within its folder.
type DocumentFile struct {
	gorm.Model

	FolderID     uint   `gorm:"not null;uniqueIndex:idx_file_name_folder"`
	Name         string `gorm:"not null;uniqueIndex:idx_file_name_folder"`
	StoredName   string `gorm:"not null"` // opaque on-disk name
	Description  string
	Size         int64
	MimeType     string `gorm:"size:100"`
	UploadedByID *uint

	// Relationships
	Folder     DocumentFolder `gorm:"foreignKey:FolderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	UploadedBy *ClubUser      `gorm:"foreignKey:UploadedByID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

// SizeDisplay returns a human-readable file size.
func (f *DocumentFile) SizeDisplay() string {
	if f.Size <= 0 {
		return "Unknown"
	}
	size := float64(f.Size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", size)
}
