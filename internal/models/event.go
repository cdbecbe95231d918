package models

import "time"

// Event is a schedulable occasion such as the ceremony or reception. The slug
// is the stable identifier business rules hang off (e.g. which event requires
// a meal choice); admins may rename events freely without breaking those rules.
type Event struct {
	BaseModel

	Slug         string     `gorm:"uniqueIndex;not null" json:"slug"`
	Name         string     `gorm:"not null" json:"name"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	Location     string     `json:"location,omitempty"`
	Description  string     `json:"description,omitempty"`
	DisplayOrder int        `gorm:"default:0;index" json:"display_order"`
}
