package models

// RsvpStatus enumerates the response states of one guest for one event.
type RsvpStatus string

const (
	RsvpStatusPending   RsvpStatus = "pending"
	RsvpStatusAttending RsvpStatus = "attending"
	RsvpStatusDeclined  RsvpStatus = "declined"
)

// Valid reports whether the status is one of the known enum values.
func (s RsvpStatus) Valid() bool {
	switch s {
	case RsvpStatusPending, RsvpStatusAttending, RsvpStatusDeclined:
		return true
	}
	return false
}

// Rsvp is the response of one Guest to one Event, uniquely keyed by the
// (guest, event) pair. Rows are created as pending when a party is invited
// and transition only via guest or admin submission. MealChoice is only
// meaningful while the status is attending on the meal-required event.
type Rsvp struct {
	BaseModel

	GuestID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_rsvps_guest_event" json:"guest_id"`
	EventID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_rsvps_guest_event" json:"event_id"`
	Status     RsvpStatus `gorm:"not null;default:pending" json:"status"`
	MealChoice string     `json:"meal_choice,omitempty"`

	Guest *Guest `gorm:"constraint:OnDelete:CASCADE" json:"guest,omitempty"`
	Event *Event `gorm:"constraint:OnDelete:CASCADE" json:"event,omitempty"`
}
