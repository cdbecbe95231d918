package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/names"
)

// ErrGuestRecordNotFound covers admin operations on a missing guest.
var ErrGuestRecordNotFound = appErrors.ErrNotFound.WithMessage("Guest not found")

// GuestService owns admin-facing guest mutations. Dietary restrictions are
// also editable through the guest submission path.
type GuestService struct {
	db *gorm.DB
}

// NewGuestService constructs a GuestService.
func NewGuestService(db *gorm.DB) (*GuestService, error) {
	if db == nil {
		return nil, errors.New("guest service: db is required")
	}
	return &GuestService{db: db}, nil
}

// CreateGuestInput holds the fields required to add a guest to a party.
type CreateGuestInput struct {
	PartyID             string
	FirstName           string
	LastName            string
	IsPrimary           bool
	IsChild             bool
	DietaryRestrictions string
}

// UpdateGuestInput carries optional field updates; nil means unchanged.
type UpdateGuestInput struct {
	FirstName           *string
	LastName            *string
	IsPrimary           *bool
	IsChild             *bool
	DietaryRestrictions *string
}

// Create adds a guest to an existing party and backfills pending RSVP rows
// for every event the party is already invited to.
func (s *GuestService) Create(ctx context.Context, input CreateGuestInput) (*models.Guest, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return nil, appErrors.NewValidation("A guest needs a first and last name.")
	}

	var guest models.Guest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if err := tx.Preload("Invitations").First(&party, "id = ?", input.PartyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return fmt.Errorf("load party: %w", err)
		}

		guest = models.Guest{
			PartyID:             party.ID,
			FirstName:           first,
			LastName:            last,
			IsPrimary:           input.IsPrimary,
			IsChild:             input.IsChild,
			DietaryRestrictions: names.SanitizeText(input.DietaryRestrictions, names.DefaultMaxTextLength),
		}
		if err := tx.Create(&guest).Error; err != nil {
			return fmt.Errorf("create guest: %w", err)
		}

		for _, invitation := range party.Invitations {
			rsvp := models.Rsvp{
				GuestID: guest.ID,
				EventID: invitation.EventID,
				Status:  models.RsvpStatusPending,
			}
			if err := tx.Create(&rsvp).Error; err != nil {
				return fmt.Errorf("backfill rsvp: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &guest, nil
}

// Update applies the supplied field changes to a guest.
func (s *GuestService) Update(ctx context.Context, id string, input UpdateGuestInput) (*models.Guest, error) {
	var guest models.Guest
	if err := s.db.WithContext(ctx).First(&guest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestRecordNotFound
		}
		return nil, fmt.Errorf("load guest: %w", err)
	}

	if input.FirstName != nil {
		first := strings.TrimSpace(*input.FirstName)
		if first == "" {
			return nil, appErrors.NewValidation("First name cannot be empty.")
		}
		guest.FirstName = first
	}
	if input.LastName != nil {
		last := strings.TrimSpace(*input.LastName)
		if last == "" {
			return nil, appErrors.NewValidation("Last name cannot be empty.")
		}
		guest.LastName = last
	}
	if input.IsPrimary != nil {
		guest.IsPrimary = *input.IsPrimary
	}
	if input.IsChild != nil {
		guest.IsChild = *input.IsChild
	}
	if input.DietaryRestrictions != nil {
		guest.DietaryRestrictions = names.SanitizeText(*input.DietaryRestrictions, names.DefaultMaxTextLength)
	}

	// Save runs the BeforeSave hook so the normalized name columns follow
	// any rename.
	if err := s.db.WithContext(ctx).Save(&guest).Error; err != nil {
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return &guest, nil
}

// Delete removes a guest along with their rsvps.
func (s *GuestService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Guest{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete guest: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGuestRecordNotFound
	}
	return nil
}
