package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
)

// ReportService produces the read models behind the admin dashboard, the
// RSVP table, and the CSV export.
type ReportService struct {
	db *gorm.DB
}

// NewReportService constructs a ReportService.
func NewReportService(db *gorm.DB) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}
	return &ReportService{db: db}, nil
}

// EventStats aggregates responses for one event.
type EventStats struct {
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	Invited   int64  `json:"invited"`
	Attending int64  `json:"attending"`
	Declined  int64  `json:"declined"`
	Pending   int64  `json:"pending"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalParties     int64            `json:"totalParties"`
	SubmittedParties int64            `json:"submittedParties"`
	TotalGuests      int64            `json:"totalGuests"`
	SongRequests     int64            `json:"songRequests"`
	Events           []EventStats     `json:"events"`
	MealCounts       map[string]int64 `json:"mealCounts"`
}

// RsvpRow is one line of the admin RSVP table and the CSV export.
type RsvpRow struct {
	PartyName           string     `json:"partyName"`
	GuestFirstName      string     `json:"guestFirstName"`
	GuestLastName       string     `json:"guestLastName"`
	EventName           string     `json:"eventName"`
	Status              string     `json:"status"`
	MealChoice          string     `json:"mealChoice"`
	DietaryRestrictions string     `json:"dietaryRestrictions"`
	SubmittedAt         *time.Time `json:"submittedAt,omitempty"`
}

// SongRow is one song request with its requesting party.
type SongRow struct {
	PartyName string `json:"partyName"`
	Song      string `json:"song"`
	Artist    string `json:"artist"`
}

// Stats computes the dashboard summary: party and guest totals, per-event
// response counts, and meal tallies across attending guests.
func (s *ReportService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{MealCounts: map[string]int64{}}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Party{}).Count(&stats.TotalParties).Error; err != nil {
		return nil, fmt.Errorf("count parties: %w", err)
	}
	if err := db.Model(&models.Party{}).Where("submitted_at IS NOT NULL").Count(&stats.SubmittedParties).Error; err != nil {
		return nil, fmt.Errorf("count submitted parties: %w", err)
	}
	if err := db.Model(&models.Guest{}).Count(&stats.TotalGuests).Error; err != nil {
		return nil, fmt.Errorf("count guests: %w", err)
	}
	if err := db.Model(&models.SongRequest{}).Count(&stats.SongRequests).Error; err != nil {
		return nil, fmt.Errorf("count song requests: %w", err)
	}

	var events []models.Event
	if err := db.Order("display_order, name").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for _, event := range events {
		entry := EventStats{EventID: event.ID, EventName: event.Name}
		counts := []struct {
			status models.RsvpStatus
			target *int64
		}{
			{models.RsvpStatusAttending, &entry.Attending},
			{models.RsvpStatusDeclined, &entry.Declined},
			{models.RsvpStatusPending, &entry.Pending},
		}
		for _, c := range counts {
			if err := db.Model(&models.Rsvp{}).
				Where("event_id = ? AND status = ?", event.ID, c.status).
				Count(c.target).Error; err != nil {
				return nil, fmt.Errorf("count rsvps: %w", err)
			}
		}
		entry.Invited = entry.Attending + entry.Declined + entry.Pending
		stats.Events = append(stats.Events, entry)
	}

	type mealCount struct {
		MealChoice string
		Total      int64
	}
	var meals []mealCount
	if err := db.Model(&models.Rsvp{}).
		Select("meal_choice, COUNT(*) AS total").
		Where("status = ? AND meal_choice <> ''", models.RsvpStatusAttending).
		Group("meal_choice").
		Scan(&meals).Error; err != nil {
		return nil, fmt.Errorf("count meals: %w", err)
	}
	for _, m := range meals {
		stats.MealCounts[m.MealChoice] = m.Total
	}

	return stats, nil
}

// ListRsvps returns every rsvp joined with its guest, party, and event,
// ordered for stable table and CSV output.
func (s *ReportService) ListRsvps(ctx context.Context) ([]RsvpRow, error) {
	var rows []RsvpRow
	err := s.db.WithContext(ctx).Model(&models.Rsvp{}).
		Select(`parties.name AS party_name,
			guests.first_name AS guest_first_name,
			guests.last_name AS guest_last_name,
			events.name AS event_name,
			rsvps.status AS status,
			rsvps.meal_choice AS meal_choice,
			guests.dietary_restrictions AS dietary_restrictions,
			parties.submitted_at AS submitted_at`).
		Joins("JOIN guests ON guests.id = rsvps.guest_id").
		Joins("JOIN parties ON parties.id = guests.party_id").
		Joins("JOIN events ON events.id = rsvps.event_id").
		Order("parties.name, guests.last_name, guests.first_name, events.display_order").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return rows, nil
}

// ListSongRequests returns all song requests with the requesting party.
func (s *ReportService) ListSongRequests(ctx context.Context) ([]SongRow, error) {
	var rows []SongRow
	err := s.db.WithContext(ctx).Model(&models.SongRequest{}).
		Select("parties.name AS party_name, song_requests.song AS song, song_requests.artist AS artist").
		Joins("JOIN parties ON parties.id = song_requests.party_id").
		Order("parties.name, song_requests.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list song requests: %w", err)
	}
	return rows, nil
}
