package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/names"
)

// LookupService resolves a guest's name to their party's full invitation and
// RSVP graph. Lookups are read-only and side-effect-free; concurrent lookups
// for the same name are independent.
type LookupService struct {
	db *gorm.DB
}

// NewLookupService constructs a LookupService.
func NewLookupService(db *gorm.DB) (*LookupService, error) {
	if db == nil {
		return nil, errors.New("lookup service: db is required")
	}
	return &LookupService{db: db}, nil
}

// Lookup matches a (first, last) name pair case- and diacritic-insensitively
// against the guest list and returns the owning party's graph. The match is
// exact on the normalized form, never fuzzy or partial.
func (s *LookupService) Lookup(ctx context.Context, firstName, lastName string) (*PartyGraph, error) {
	first := names.Normalize(firstName)
	last := names.Normalize(lastName)
	if first == "" || last == "" {
		return nil, appErrors.NewValidation("Please enter a valid first and last name.")
	}

	var guest models.Guest
	err := s.db.WithContext(ctx).
		Where("normalized_first_name = ? AND normalized_last_name = ?", first, last).
		First(&guest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrGuestNotFound
		}
		return nil, fmt.Errorf("lookup guest: %w", err)
	}

	return loadPartyGraph(ctx, s.db, guest.PartyID)
}
