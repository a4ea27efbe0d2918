package models

import (
	"strings"

	"gorm.io/gorm"
)

// DocumentFolder is a node in the document library tree. Folder names are
// unique among siblings and the hierarchy must stay acyclic.
type DocumentFolder struct {
	gorm.Model

	Name        string `gorm:"not null;uniqueIndex:idx_folder_name_parent"`
	ParentID    *uint  `gorm:"uniqueIndex:idx_folder_name_parent"`
	Description string
	CreatedByID *uint

	// Relationships
	Parent      *DocumentFolder    `gorm:"foreignKey:ParentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Subfolders  []DocumentFolder   `gorm:"foreignKey:ParentID"`
	Files       []DocumentFile     `gorm:"foreignKey:FolderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Permissions []FolderPermission `gorm:"foreignKey:FolderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CreatedBy   *ClubUser          `gorm:"foreignKey:CreatedByID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}

// SanitizeFolderName makes a folder name safe for filesystem use.
func SanitizeFolderName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "unnamed_folder"
	}
	return name
}
