package models

import "time"

// Confirmation is an outbox row for a confirmation email. It is written in
// the same transaction as the RSVP commit and dispatched later by the relay,
// so a submission never waits on (or fails because of) email delivery.
type Confirmation struct {
	BaseModel

	PartyID   string `gorm:"type:uuid;not null;index" json:"party_id"`
	Recipient string `gorm:"not null" json:"recipient"`
	Subject   string `gorm:"not null" json:"subject"`
	Body      string `gorm:"not null" json:"body"`

	Attempts  int        `gorm:"default:0" json:"attempts"`
	LastError string     `json:"-"`
	SentAt    *time.Time `gorm:"index" json:"sent_at,omitempty"`

	Party *Party `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
