package models

import "time"

// Party is a named invitation unit (a family or couple) sharing one contact
// email. Admin deletion cascades to guests, invitations, song requests, and
// queued confirmations.
type Party struct {
	BaseModel

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null" json:"email"`
	Notes string `json:"notes,omitempty"`

	// SubmittedAt marks whether the party has ever completed a submission.
	// It is set on the first successful submission and refreshed on every
	// resubmission, never cleared.
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	ConfirmationSentAt *time.Time `json:"confirmation_sent_at,omitempty"`

	Guests       []Guest       `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE" json:"guests,omitempty"`
	Invitations  []Invitation  `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE" json:"invitations,omitempty"`
	SongRequests []SongRequest `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE" json:"song_requests,omitempty"`
}
