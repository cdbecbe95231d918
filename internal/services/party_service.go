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

// PartyService owns the admin-facing lifecycle of parties and their guests.
type PartyService struct {
	db *gorm.DB
}

// NewPartyService constructs a PartyService.
func NewPartyService(db *gorm.DB) (*PartyService, error) {
	if db == nil {
		return nil, errors.New("party service: db is required")
	}
	return &PartyService{db: db}, nil
}

// GuestInput describes one guest when creating or updating a party.
type GuestInput struct {
	FirstName string
	LastName  string
	IsPrimary bool
	IsChild   bool
}

// CreatePartyInput holds the fields required to create a party.
type CreatePartyInput struct {
	Name   string
	Email  string
	Notes  string
	Guests []GuestInput
}

// UpdatePartyInput carries optional field updates; nil means unchanged.
type UpdatePartyInput struct {
	Name  *string
	Email *string
	Notes *string
}

// List returns all parties with their guests, newest first.
func (s *PartyService) List(ctx context.Context) ([]models.Party, error) {
	var parties []models.Party
	if err := s.db.WithContext(ctx).
		Preload("Guests").
		Order("created_at DESC").
		Find(&parties).Error; err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	return parties, nil
}

// Get loads one party with guests, invitations, and song requests.
func (s *PartyService) Get(ctx context.Context, id string) (*models.Party, error) {
	var party models.Party
	err := s.db.WithContext(ctx).
		Preload("Guests").
		Preload("Invitations.Event").
		Preload("SongRequests").
		First(&party, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return &party, nil
}

// Create inserts a party together with its initial guests.
func (s *PartyService) Create(ctx context.Context, input CreatePartyInput) (*models.Party, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, appErrors.NewValidation("Party name is required.")
	}
	if email == "" {
		return nil, appErrors.NewValidation("Party email is required.")
	}

	party := models.Party{
		Name:  name,
		Email: email,
		Notes: names.SanitizeText(input.Notes, names.DefaultMaxTextLength),
	}
	for _, guest := range input.Guests {
		first := strings.TrimSpace(guest.FirstName)
		last := strings.TrimSpace(guest.LastName)
		if first == "" || last == "" {
			return nil, appErrors.NewValidation("Every guest needs a first and last name.")
		}
		party.Guests = append(party.Guests, models.Guest{
			FirstName: first,
			LastName:  last,
			IsPrimary: guest.IsPrimary,
			IsChild:   guest.IsChild,
		})
	}

	if err := s.db.WithContext(ctx).Create(&party).Error; err != nil {
		return nil, fmt.Errorf("create party: %w", err)
	}
	return s.Get(ctx, party.ID)
}

// Update applies the supplied field changes.
func (s *PartyService) Update(ctx context.Context, id string, input UpdatePartyInput) (*models.Party, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, appErrors.NewValidation("Party name cannot be empty.")
		}
		updates["name"] = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, appErrors.NewValidation("Party email cannot be empty.")
		}
		updates["email"] = email
	}
	if input.Notes != nil {
		updates["notes"] = names.SanitizeText(*input.Notes, names.DefaultMaxTextLength)
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&models.Party{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("update party: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrPartyNotFound
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a party; guests, invitations, rsvps, song requests, and
// queued confirmations go with it via cascade.
func (s *PartyService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Party{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete party: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPartyNotFound
	}
	return nil
}
