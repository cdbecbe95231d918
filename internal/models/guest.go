package models

import (
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/pkg/names"
)

// Guest is one invited individual belonging to exactly one Party.
type Guest struct {
	BaseModel

	PartyID   string `gorm:"type:uuid;not null;index" json:"party_id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`

	// Normalized name columns are comparison keys for the lookup path and are
	// never rendered; they are maintained by the BeforeSave hook.
	NormalizedFirstName string `gorm:"index:idx_guests_normalized_name" json:"-"`
	NormalizedLastName  string `gorm:"index:idx_guests_normalized_name" json:"-"`

	IsPrimary           bool   `gorm:"default:false" json:"is_primary"`
	IsChild             bool   `gorm:"default:false" json:"is_child"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`

	Rsvps []Rsvp `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"rsvps,omitempty"`
}

// BeforeSave keeps the normalized name columns in sync with the stored name.
func (g *Guest) BeforeSave(tx *gorm.DB) error {
	g.NormalizedFirstName = names.Normalize(g.FirstName)
	g.NormalizedLastName = names.Normalize(g.LastName)
	return nil
}

// DisplayName renders the stored name for guest-facing views.
func (g *Guest) DisplayName() string {
	return names.Capitalize(g.FirstName) + " " + names.Capitalize(g.LastName)
}
