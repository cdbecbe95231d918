package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
)

// ErrEventNotFound covers admin operations on a missing event.
var ErrEventNotFound = appErrors.ErrNotFound.WithMessage("Event not found")

// EventService owns the admin-facing lifecycle of wedding events.
type EventService struct {
	db *gorm.DB
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB) (*EventService, error) {
	if db == nil {
		return nil, errors.New("event service: db is required")
	}
	return &EventService{db: db}, nil
}

// CreateEventInput holds the fields required to create an event.
type CreateEventInput struct {
	Slug         string
	Name         string
	Description  string
	Location     string
	StartsAt     *time.Time
	DisplayOrder int
}

// UpdateEventInput carries optional field updates; nil means unchanged.
type UpdateEventInput struct {
	Name         *string
	Description  *string
	Location     *string
	StartsAt     *time.Time
	DisplayOrder *int
}

// List returns all events in display order.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := s.db.WithContext(ctx).
		Order("display_order, name").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Create inserts a new event. Slugs are unique; a duplicate slug maps to a
// validation error rather than a bare constraint failure.
func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if slug == "" {
		return nil, appErrors.NewValidation("Event slug is required.")
	}
	if name == "" {
		return nil, appErrors.NewValidation("Event name is required.")
	}

	event := models.Event{
		Slug:         slug,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Location:     strings.TrimSpace(input.Location),
		StartsAt:     input.StartsAt,
		DisplayOrder: input.DisplayOrder,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, appErrors.NewValidation(fmt.Sprintf("An event with slug %q already exists.", slug))
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &event, nil
}

// Update applies the supplied field changes to an event. The slug is
// immutable once created; invitations reference events by id, and the slug is
// also how configuration picks out the meal-required event.
func (s *EventService) Update(ctx context.Context, id string, input UpdateEventInput) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, appErrors.NewValidation("Event name cannot be empty.")
		}
		event.Name = name
	}
	if input.Description != nil {
		event.Description = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		event.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartsAt != nil {
		event.StartsAt = input.StartsAt
	}
	if input.DisplayOrder != nil {
		event.DisplayOrder = *input.DisplayOrder
	}

	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return &event, nil
}

// Delete removes an event along with its invitations and rsvps.
func (s *EventService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
