package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	"github.com/jbeaudin/maplewood/pkg/names"
)

// PartyGraph is the guest-facing projection of a party and everything needed
// to render the RSVP form or the confirmation view: sibling guests, invited
// events in display order, the current response for every (guest, event)
// pair, and song requests. Admin-only fields (contact email, confirmation
// timestamps) are deliberately absent.
type PartyGraph struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Notes         string         `json:"notes,omitempty"`
	SubmittedAt   *time.Time     `json:"submitted_at,omitempty"`
	Guests        []GuestView    `json:"guests"`
	InvitedEvents []InvitedEvent `json:"invited_events"`
	SongRequests  []SongView     `json:"song_requests"`
}

// GuestView is one guest as shown to the party, with display-cased names.
type GuestView struct {
	ID                  string `json:"id"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	IsPrimary           bool   `json:"is_primary"`
	IsChild             bool   `json:"is_child"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
}

// InvitedEvent pairs an event with the party's responses for it.
type InvitedEvent struct {
	Event EventView  `json:"event"`
	Rsvps []RsvpView `json:"rsvps"`
}

// EventView is the guest-facing shape of an event.
type EventView struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
}

// RsvpView is one guest's current response to one event.
type RsvpView struct {
	GuestID    string            `json:"guest_id"`
	EventID    string            `json:"event_id"`
	Status     models.RsvpStatus `json:"status"`
	MealChoice string            `json:"meal_choice,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// SongView is one song request.
type SongView struct {
	ID     string `json:"id"`
	Song   string `json:"song"`
	Artist string `json:"artist,omitempty"`
}

// loadPartyGraph assembles the full graph for one party. It runs inside
// whatever db handle it is given, so the submission service can reuse it
// within its commit transaction.
func loadPartyGraph(ctx context.Context, db *gorm.DB, partyID string) (*PartyGraph, error) {
	var party models.Party
	err := db.WithContext(ctx).
		Preload("Guests", func(db *gorm.DB) *gorm.DB { return db.Order("guests.created_at") }).
		Preload("Invitations.Event").
		Preload("SongRequests", func(db *gorm.DB) *gorm.DB { return db.Order("song_requests.created_at") }).
		First(&party, "id = ?", partyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("load party: %w", err)
	}

	guestIDs := make([]string, 0, len(party.Guests))
	for _, guest := range party.Guests {
		guestIDs = append(guestIDs, guest.ID)
	}

	eventIDs := make([]string, 0, len(party.Invitations))
	for _, invitation := range party.Invitations {
		eventIDs = append(eventIDs, invitation.EventID)
	}

	var rsvps []models.Rsvp
	if len(guestIDs) > 0 && len(eventIDs) > 0 {
		if err := db.WithContext(ctx).
			Where("guest_id IN ? AND event_id IN ?", guestIDs, eventIDs).
			Find(&rsvps).Error; err != nil {
			return nil, fmt.Errorf("load rsvps: %w", err)
		}
	}

	rsvpsByEvent := make(map[string][]RsvpView, len(eventIDs))
	for _, rsvp := range rsvps {
		rsvpsByEvent[rsvp.EventID] = append(rsvpsByEvent[rsvp.EventID], RsvpView{
			GuestID:    rsvp.GuestID,
			EventID:    rsvp.EventID,
			Status:     rsvp.Status,
			MealChoice: rsvp.MealChoice,
			UpdatedAt:  rsvp.UpdatedAt,
		})
	}

	graph := &PartyGraph{
		ID:            party.ID,
		Name:          party.Name,
		Notes:         party.Notes,
		SubmittedAt:   party.SubmittedAt,
		Guests:        make([]GuestView, 0, len(party.Guests)),
		InvitedEvents: make([]InvitedEvent, 0, len(party.Invitations)),
		SongRequests:  make([]SongView, 0, len(party.SongRequests)),
	}

	for _, guest := range party.Guests {
		graph.Guests = append(graph.Guests, GuestView{
			ID:                  guest.ID,
			FirstName:           names.Capitalize(guest.FirstName),
			LastName:            names.Capitalize(guest.LastName),
			IsPrimary:           guest.IsPrimary,
			IsChild:             guest.IsChild,
			DietaryRestrictions: guest.DietaryRestrictions,
		})
	}

	invitations := append([]models.Invitation(nil), party.Invitations...)
	sort.SliceStable(invitations, func(i, j int) bool {
		left, right := invitations[i].Event, invitations[j].Event
		if left == nil || right == nil {
			return left != nil
		}
		return left.DisplayOrder < right.DisplayOrder
	})

	for _, invitation := range invitations {
		if invitation.Event == nil {
			continue
		}
		event := invitation.Event
		views := rsvpsByEvent[event.ID]
		if views == nil {
			views = []RsvpView{}
		}
		graph.InvitedEvents = append(graph.InvitedEvents, InvitedEvent{
			Event: EventView{
				ID:          event.ID,
				Slug:        event.Slug,
				Name:        event.Name,
				StartsAt:    event.StartsAt,
				Location:    event.Location,
				Description: event.Description,
			},
			Rsvps: views,
		})
	}

	for _, song := range party.SongRequests {
		graph.SongRequests = append(graph.SongRequests, SongView{
			ID:     song.ID,
			Song:   song.Song,
			Artist: song.Artist,
		})
	}

	return graph, nil
}
