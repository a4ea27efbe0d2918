package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ClubUser is an authenticated member/account record.
type ClubUser struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	FirstName    string `gorm:"not null"`
	LastName     string `gorm:"not null"`

	// General information
	Salutation              string
	MiddleInitial           string `gorm:"size:1"`
	ProfessionalDesignation string
	DateOfBirth             *time.Time
	Nickname                string

	// Contact information
	PrimaryPhone   string
	SecondaryPhone string
	WorkPhone      string

	// Spouse information
	SpouseFirstName string
	SpouseLastName  string

	// Primary address
	Country  string `gorm:"size:2"`
	Address1 string
	Address2 string
	City     string
	State    string `gorm:"size:2"`
	ZipCode  string
	Timezone string // e.g. "America/New_York"

	// Work information
	Company         string
	OccupationTitle string

	// Vessel information
	VesselType             string
	VesselName             string
	VesselMoorageLocation  string
	VesselManufacturer     string
	VesselModel            string
	VesselLOA              *float64 // length overall in feet
	VesselBeam             *float64
	VesselDraft            *float64
	VesselCruisingSpeed    *float64 // knots
	VesselPowerRequirement string
	VesselTiePreference    string

	// Role and membership
	RoleID         *uint `gorm:"index"`
	ParentMemberID *uint `gorm:"index"`

	// Account status
	IsActive    bool `gorm:"default:true;index"`
	IsSuperuser bool `gorm:"default:false"`
	LastLogin   *time.Time

	// Relationships
	Role         *Role        `gorm:"foreignKey:RoleID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	ParentMember *ClubUser    `gorm:"foreignKey:ParentMemberID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Dependents   []ClubUser   `gorm:"foreignKey:ParentMemberID"`
	MemberTypes  []MemberType `gorm:"many2many:club_user_member_types;"`

	EventContacts      []EventContact      `gorm:"foreignKey:MemberID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	EventRegistrations []EventRegistration `gorm:"foreignKey:MemberID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// FullName returns "First Last".
func (u *ClubUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name prefixed with the salutation when set.
func (u *ClubUser) DisplayName() string {
	if u.Salutation != "" {
		return strings.TrimSpace(u.Salutation + " " + u.FullName())
	}
	return u.FullName()
}

// HasPermission checks a named permission against the user's role.
// Superusers pass every check. Role must be preloaded.
func (u *ClubUser) HasPermission(permission string) bool {
	if u.IsSuperuser {
		return true
	}
	if u.Role == nil {
		return false
	}
	return u.Role.HasPermission(permission)
}

// IsAdmin reports whether the user can administer other users and settings.
func (u *ClubUser) IsAdmin() bool {
	return u.HasPermission("manage_users") || u.HasPermission("access_admin")
}

// ActiveMemberTypeIDs returns the IDs of the user's active member types.
// MemberTypes must be preloaded.
func (u *ClubUser) ActiveMemberTypeIDs() []uint {
	var ids []uint
	for _, mt := range u.MemberTypes {
		if mt.IsActive {
			ids = append(ids, mt.ID)
		}
	}
	return ids
}
