package models

// SongRequest is a free-text song/artist pair attributed to a Party. Created
// during RSVP submission or admin entry; deletable only by admins.
type SongRequest struct {
	BaseModel

	PartyID string `gorm:"type:uuid;not null;index" json:"party_id"`
	Song    string `gorm:"not null" json:"song"`
	Artist  string `json:"artist,omitempty"`
}
