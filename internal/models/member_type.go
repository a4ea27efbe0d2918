package models

import "gorm.io/gorm"

// MemberType classifies members (e.g. Full Member, Associate) and controls
// event eligibility and parent/dependent relationships.
type MemberType struct {
	gorm.Model

	Name         string `gorm:"uniqueIndex;not null"`
	Description  string
	IsActive     bool `gorm:"default:true"`
	CanBeParent  bool `gorm:"default:false"`
	CanBeChild   bool `gorm:"default:false"`
	DisplayOrder int  `gorm:"default:0"`

	// Relationships
	Members []ClubUser `gorm:"many2many:club_user_member_types;"`
}

// MemberTypeRelationship defines an allowed parent/child pairing between two
// member types, e.g. Full Member -> Junior Member ("Child").
type MemberTypeRelationship struct {
	gorm.Model

	ParentTypeID     uint   `gorm:"not null;uniqueIndex:idx_parent_child_type"`
	ChildTypeID      uint   `gorm:"not null;uniqueIndex:idx_parent_child_type"`
	RelationshipName string `gorm:"not null"` // e.g. "Child", "Spouse", "First Mate"
	MaxChildren      *int   // nil means unlimited
	IsActive         bool   `gorm:"default:true"`

	// Relationships
	ParentType MemberType `gorm:"foreignKey:ParentTypeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ChildType  MemberType `gorm:"foreignKey:ChildTypeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
