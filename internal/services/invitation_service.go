package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
)

// InvitationService manages which events a party is invited to. Invitations
// drive the rest of the system: guests can only respond for events their
// party holds an invitation to, and pending rsvp rows exist per invited
// (guest, event) pair.
type InvitationService struct {
	db *gorm.DB
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(db *gorm.DB) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	return &InvitationService{db: db}, nil
}

// Replace sets a party's invitations to exactly the supplied event ids in one
// transaction. Newly invited events get pending rsvp rows for every guest in
// the party; rsvps for removed events are deleted along with their history.
func (s *InvitationService) Replace(ctx context.Context, partyID string, eventIDs []string) (*PartyGraph, error) {
	var graph *PartyGraph
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if err := tx.Preload("Guests").Preload("Invitations").First(&party, "id = ?", partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("load party: %w", err)
		}

		wanted := make(map[string]bool, len(eventIDs))
		for _, eventID := range eventIDs {
			if eventID == "" {
				return appErrors.NewValidation("Event id cannot be empty.")
			}
			wanted[eventID] = true
		}

		if len(wanted) > 0 {
			ids := make([]string, 0, len(wanted))
			for eventID := range wanted {
				ids = append(ids, eventID)
			}
			var count int64
			if err := tx.Model(&models.Event{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
				return fmt.Errorf("check events: %w", err)
			}
			if int(count) != len(ids) {
				return appErrors.NewValidation("One or more event ids do not exist.")
			}
		}

		existing := make(map[string]bool, len(party.Invitations))
		for _, invitation := range party.Invitations {
			existing[invitation.EventID] = true
		}

		guestIDs := make([]string, 0, len(party.Guests))
		for _, guest := range party.Guests {
			guestIDs = append(guestIDs, guest.ID)
		}

		// Drop invitations that are no longer wanted, and the rsvp rows
		// that only existed because of them.
		for eventID := range existing {
			if wanted[eventID] {
				continue
			}
			if err := tx.Where("party_id = ? AND event_id = ?", party.ID, eventID).
				Delete(&models.Invitation{}).Error; err != nil {
				return fmt.Errorf("delete invitation: %w", err)
			}
			if len(guestIDs) > 0 {
				if err := tx.Where("guest_id IN ? AND event_id = ?", guestIDs, eventID).
					Delete(&models.Rsvp{}).Error; err != nil {
					return fmt.Errorf("delete rsvps: %w", err)
				}
			}
		}

		// Add the new ones with pending rsvp rows for every guest.
		for eventID := range wanted {
			if existing[eventID] {
				continue
			}
			invitation := models.Invitation{PartyID: party.ID, EventID: eventID}
			if err := tx.Create(&invitation).Error; err != nil {
				return fmt.Errorf("create invitation: %w", err)
			}
			for _, guestID := range guestIDs {
				rsvp := models.Rsvp{
					GuestID: guestID,
					EventID: eventID,
					Status:  models.RsvpStatusPending,
				}
				if err := tx.Create(&rsvp).Error; err != nil {
					return fmt.Errorf("create pending rsvp: %w", err)
				}
			}
		}

		var err error
		graph, err = loadPartyGraph(ctx, tx, party.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return graph, nil
}
