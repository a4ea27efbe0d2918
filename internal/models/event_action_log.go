package models

import (
	"time"

	"gorm.io/datatypes"
)

// EventActionLog records create/update/delete actions taken on events by
// editors and admins. Rows are never updated or soft-deleted.
type EventActionLog struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	EventID    *uint          `gorm:"index"` // NULL once the event is deleted
	UserID     *uint          `gorm:"index"`
	Action     string         `gorm:"not null;index"` // "created", "updated", "deleted"
	EventTitle string         `gorm:"not null"`       // snapshot of the title at action time
	EventData  datatypes.JSON // snapshot of event fields (deletes)
	IPAddress  string
	UserAgent  string         `gorm:"size:255"`

	// Relationships
	Event *Event    `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	User  *ClubUser `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
