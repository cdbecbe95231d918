package models

import "gorm.io/datatypes"

// RsvpHistory is an append-only audit log of status transitions. Rows are
// written once per change and never mutated or deleted.
type RsvpHistory struct {
	BaseModel

	GuestID        string         `gorm:"type:uuid;not null;index" json:"guest_id"`
	EventID        string         `gorm:"type:uuid;not null;index" json:"event_id"`
	PreviousStatus RsvpStatus     `gorm:"not null" json:"previous_status"`
	NewStatus      RsvpStatus     `gorm:"not null" json:"new_status"`
	Detail         datatypes.JSON `json:"detail,omitempty"`
}
