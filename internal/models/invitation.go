package models

// Invitation joins Parties to the Events they are invited to. Bulk invite
// replaces a party's full invitation set in one operation rather than diffing.
type Invitation struct {
	BaseModel

	PartyID string `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_party_event" json:"party_id"`
	EventID string `gorm:"type:uuid;not null;uniqueIndex:idx_invitations_party_event" json:"event_id"`

	Party *Party `gorm:"constraint:OnDelete:CASCADE" json:"party,omitempty"`
	Event *Event `gorm:"constraint:OnDelete:CASCADE" json:"event,omitempty"`
}
