package models

import "gorm.io/gorm"

// FolderPermission grants a role capabilities on a folder. Grants cascade to
// every descendant folder and the files within them.
type FolderPermission struct {
	gorm.Model

	FolderID  uint `gorm:"not null;uniqueIndex:idx_folder_role_perm"`
	RoleID    uint `gorm:"not null;uniqueIndex:idx_folder_role_perm"`
	CanView   bool `gorm:"default:false"`
	CanAdd    bool `gorm:"default:false"`
	CanEdit   bool `gorm:"default:false"`
	CanDelete bool `gorm:"default:false"`

	// Relationships
	Folder DocumentFolder `gorm:"foreignKey:FolderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Role   Role           `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// Grants reports whether the row grants the named capability.
func (p *FolderPermission) Grants(capability string) bool {
	switch capability {
	case "view":
		return p.CanView
	case "add":
		return p.CanAdd
	case "edit":
		return p.CanEdit
	case "delete":
		return p.CanDelete
	}
	return false
}
