package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a calendar event/activity for the club.
type Event struct {
	gorm.Model

	Title                string    `gorm:"not null"`
	ShortDescription     string    `gorm:"size:500;not null"`
	FormattedDescription string    // full rich-text description
	CategoryID           *uint     `gorm:"index"`
	StartsAt             time.Time `gorm:"not null;index:idx_event_window"`
	EndsAt               time.Time `gorm:"not null;index:idx_event_window"`

	RegistrationStatus  string     `gorm:"not null;default:'not_required'"`
	RegistrationOpensAt *time.Time // when set, registration opens automatically at this time

	RegistrantListVisibility string `gorm:"not null;default:'none'"`

	// Relationships
	Category           *EventCategory         `gorm:"foreignKey:CategoryID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Contacts           []EventContact         `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Registrations      []EventRegistration    `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Fees               []EventRegistrationFee `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AllowedMemberTypes []MemberType           `gorm:"many2many:event_allowed_member_types;"`
}

// Duration returns how long the event runs.
func (e *Event) Duration() time.Duration {
	return e.EndsAt.Sub(e.StartsAt)
}

// Color returns the category color, falling back to the default when the
// event is uncategorized. Category must be preloaded.
func (e *Event) Color() string {
	if e.Category != nil && e.Category.Color != "" {
		return e.Category.Color
	}
	return "#007bff"
}

// PrimaryContact returns the primary contact, or nil. Contacts must be preloaded.
func (e *Event) PrimaryContact() *EventContact {
	for i := range e.Contacts {
		if e.Contacts[i].IsPrimary {
			return &e.Contacts[i]
		}
	}
	return nil
}

// IsContact reports whether the given member is a contact for the event.
// Contacts must be preloaded.
func (e *Event) IsContact(memberID uint) bool {
	for i := range e.Contacts {
		if e.Contacts[i].MemberID == memberID {
			return true
		}
	}
	return false
}
