package models

import "gorm.io/gorm"

// EventContact associates a member with contact responsibilities for an event.
// At most one contact per event is primary.
type EventContact struct {
	gorm.Model

	EventID          uint `gorm:"not null;uniqueIndex:idx_event_member_contact"`
	MemberID         uint `gorm:"not null;uniqueIndex:idx_event_member_contact"`
	IsPrimary        bool `gorm:"default:false"`
	Responsibilities string

	// Relationships
	Event  Event    `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Member ClubUser `gorm:"foreignKey:MemberID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// BeforeSave demotes any other primary contact on the same event so the
// one-primary-per-event invariant holds.
func (c *EventContact) BeforeSave(tx *gorm.DB) error {
	if !c.IsPrimary {
		return nil
	}
	return tx.Model(&EventContact{}).
		Where("event_id = ? AND is_primary = ? AND id != ?", c.EventID, true, c.ID).
		Update("is_primary", false).Error
}
