package models

import "gorm.io/gorm"

// Role is a named permission bundle (viewer/member/editor/admin).
type Role struct {
	gorm.Model

	Name                string `gorm:"uniqueIndex;not null"`
	Description         string
	CanViewEvents       bool `gorm:"default:true"`
	CanCreateEvents     bool `gorm:"default:false"`
	CanEditEvents       bool `gorm:"default:false"`
	CanDeleteEvents     bool `gorm:"default:false"`
	CanManageCategories bool `gorm:"default:false"`
	CanManageUsers      bool `gorm:"default:false"`
	CanAccessAdmin      bool `gorm:"default:false"`

	// Relationships
	Users             []ClubUser         `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	FolderPermissions []FolderPermission `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// HasPermission reports whether the role grants the named permission.
func (r *Role) HasPermission(permission string) bool {
	switch permission {
	case "view_events":
		return r.CanViewEvents
	case "create_events":
		return r.CanCreateEvents
	case "edit_events":
		return r.CanEditEvents
	case "delete_events":
		return r.CanDeleteEvents
	case "manage_categories":
		return r.CanManageCategories
	case "manage_users":
		return r.CanManageUsers
	case "access_admin":
		return r.CanAccessAdmin
	}
	return false
}
