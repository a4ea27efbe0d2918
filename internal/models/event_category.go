package models

import "gorm.io/gorm"

// EventCategory organizes events (e.g. Racing, Social, Training).
type EventCategory struct {
	gorm.Model

	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	Color       string `gorm:"size:7;default:'#007bff'"` // hex color for calendar display

	// Relationships
	Events []Event `gorm:"foreignKey:CategoryID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
