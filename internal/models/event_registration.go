package models

import (
	"time"

	"gorm.io/gorm"
)

// EventRegistration records a member signing up for an event. A member has at
// most one active (non-cancelled) registration per event; cancelled rows are
// kept for history, so uniqueness is enforced at the handler level rather
// than by a database index.
type EventRegistration struct {
	gorm.Model

	EventID     uint `gorm:"not null;index:idx_event_member_reg"`
	MemberID    uint `gorm:"not null;index:idx_event_member_reg"`
	Cancelled   bool `gorm:"default:false"`
	CancelledAt *time.Time
	FeeCharged  float64 `gorm:"type:decimal(8,2);default:0"`

	// Relationships
	Event  Event        `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Member ClubUser     `gorm:"foreignKey:MemberID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Guests []EventGuest `gorm:"foreignKey:RegistrationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// Cancel marks the registration cancelled and stamps the cancellation time.
func (r *EventRegistration) Cancel(tx *gorm.DB) error {
	now := time.Now()
	r.Cancelled = true
	r.CancelledAt = &now
	return tx.Model(r).Updates(map[string]interface{}{
		"cancelled":    true,
		"cancelled_at": now,
	}).Error
}

// EventRegistrationFee is the fee charged for an event, keyed by member type.
type EventRegistrationFee struct {
	gorm.Model

	EventID      uint    `gorm:"not null;uniqueIndex:idx_event_member_type_fee"`
	MemberTypeID uint    `gorm:"not null;uniqueIndex:idx_event_member_type_fee"`
	Amount       float64 `gorm:"type:decimal(8,2);not null"`

	// Relationships
	Event      Event      `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	MemberType MemberType `gorm:"foreignKey:MemberTypeID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// EventGuest is a guest brought along on a member's registration.
type EventGuest struct {
	gorm.Model

	RegistrationID uint   `gorm:"not null;index"`
	Name           string `gorm:"not null"`
	Notes          string

	// Relationships
	Registration EventRegistration `gorm:"foreignKey:RegistrationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
