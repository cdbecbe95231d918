package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
	"github.com/jbeaudin/maplewood/pkg/names"
)

const (
	defaultMaxSongRequests = 10
	defaultMaxNoteLength   = 1000
	maxSongFieldLength     = 200
)

// RsvpSelection is one guest's response to one event within a submission.
type RsvpSelection struct {
	GuestID    string
	EventID    string
	Status     models.RsvpStatus
	MealChoice string
}

// DietaryUpdate replaces one guest's dietary restriction text. Empty text
// clears it.
type DietaryUpdate struct {
	GuestID             string
	DietaryRestrictions string
}

// SongChoice is one requested song. Entries whose title is empty after
// trimming are dropped silently; they represent "no request".
type SongChoice struct {
	Song   string
	Artist string
}

// SubmitInput is a full RSVP submission for one party.
type SubmitInput struct {
	PartyID        string
	Rsvps          []RsvpSelection
	DietaryUpdates []DietaryUpdate
	SongRequests   []SongChoice
	Notes          string
}

// SubmissionConfig carries the environment-level policy the submission
// service enforces.
type SubmissionConfig struct {
	// Deadline, when set, rejects submissions after it passes. Lookups stay
	// available.
	Deadline *time.Time
	// MealEventSlug names the event whose attending guests must pick a meal.
	MealEventSlug string
	// MealChoices is the fixed enumeration of valid meal choices.
	MealChoices []string
	// MaxSongRequests caps the song list; excess entries are a validation
	// error, never silent truncation.
	MaxSongRequests int
	// MaxNoteLength caps the party's free-text note.
	MaxNoteLength int
}

// SubmissionOption customises SubmissionService behaviour.
type SubmissionOption func(*SubmissionService)

// WithSubmissionClock injects a custom clock, primarily for testing.
func WithSubmissionClock(clock func() time.Time) SubmissionOption {
	return func(s *SubmissionService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// SubmissionService validates and atomically applies a full RSVP submission.
// Two racing submissions for the same party interleave only at whole-
// submission granularity: each commit happens in a single transaction, so the
// last committed transaction wins.
type SubmissionService struct {
	db            *gorm.DB
	confirmations *ConfirmationService
	cfg           SubmissionConfig
	now           func() time.Time
}

// NewSubmissionService constructs a SubmissionService. The confirmation
// service may be nil, in which case no emails are queued.
func NewSubmissionService(db *gorm.DB, confirmations *ConfirmationService, cfg SubmissionConfig, opts ...SubmissionOption) (*SubmissionService, error) {
	if db == nil {
		return nil, errors.New("submission service: db is required")
	}

	if cfg.MaxSongRequests <= 0 {
		cfg.MaxSongRequests = defaultMaxSongRequests
	}
	if cfg.MaxNoteLength <= 0 {
		cfg.MaxNoteLength = defaultMaxNoteLength
	}

	service := &SubmissionService{
		db:            db,
		confirmations: confirmations,
		cfg:           cfg,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Submit validates the payload against the party's invitations, commits the
// whole submission in one transaction, queues a confirmation email, and
// returns the freshly reloaded party graph. Resubmission fully replaces prior
// selections; it never merges.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*PartyGraph, error) {
	now := s.now()
	if s.cfg.Deadline != nil && now.After(*s.cfg.Deadline) {
		return nil, appErrors.ErrDeadlinePassed
	}

	var party models.Party
	err := s.db.WithContext(ctx).
		Preload("Guests").
		Preload("Invitations.Event").
		First(&party, "id = ?", input.PartyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartyNotFound
		}
		return nil, fmt.Errorf("load party: %w", err)
	}

	plan, err := s.validate(&party, input)
	if err != nil {
		return nil, err
	}

	var graph *PartyGraph
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyRsvps(ctx, tx, plan, now); err != nil {
			return err
		}

		for guestID, dietary := range plan.dietary {
			if err := tx.Model(&models.Guest{}).
				Where("id = ?", guestID).
				Updates(map[string]any{"dietary_restrictions": dietary, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("update dietary restrictions: %w", err)
			}
		}

		// An empty song list after filtering means "not part of this edit",
		// so prior requests stay; a non-empty list replaces the whole set.
		if len(plan.songs) > 0 {
			if err := tx.Where("party_id = ?", party.ID).Delete(&models.SongRequest{}).Error; err != nil {
				return fmt.Errorf("clear song requests: %w", err)
			}
			records := make([]models.SongRequest, 0, len(plan.songs))
			for _, song := range plan.songs {
				records = append(records, models.SongRequest{
					PartyID: party.ID,
					Song:    song.Song,
					Artist:  song.Artist,
				})
			}
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("insert song requests: %w", err)
			}
		}

		if err := tx.Model(&models.Party{}).
			Where("id = ?", party.ID).
			Updates(map[string]any{
				"notes":        plan.notes,
				"submitted_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return fmt.Errorf("stamp party: %w", err)
		}

		var txErr error
		graph, txErr = loadPartyGraph(ctx, tx, party.ID)
		if txErr != nil {
			return txErr
		}

		if s.confirmations != nil {
			if err := s.confirmations.Enqueue(ctx, tx, graph, party.Email); err != nil {
				return fmt.Errorf("queue confirmation: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return graph, nil
}

// submissionPlan is the validated, sanitized form of a submission, ready to
// apply without further checks.
type submissionPlan struct {
	partyID    string
	selections []RsvpSelection
	dietary    map[string]string
	songs      []SongChoice
	notes      string
}

func (s *SubmissionService) validate(party *models.Party, input SubmitInput) (*submissionPlan, error) {
	guestsByID := make(map[string]*models.Guest, len(party.Guests))
	for i := range party.Guests {
		guestsByID[party.Guests[i].ID] = &party.Guests[i]
	}

	invitedEvents := make(map[string]*models.Event, len(party.Invitations))
	for _, invitation := range party.Invitations {
		if invitation.Event != nil {
			invitedEvents[invitation.EventID] = invitation.Event
		}
	}

	// Last entry wins for duplicate (guest, event) pairs so resubmitting the
	// same pair within one payload stays an idempotent replace.
	deduped := make(map[string]RsvpSelection, len(input.Rsvps))
	order := make([]string, 0, len(input.Rsvps))
	var missingMeal []string

	for _, sel := range input.Rsvps {
		guest, ok := guestsByID[sel.GuestID]
		if !ok {
			return nil, appErrors.NewValidation("One of the submitted guests does not belong to this party.")
		}

		event, ok := invitedEvents[sel.EventID]
		if !ok {
			return nil, appErrors.NewValidation(fmt.Sprintf("%s is not invited to that event.", guest.DisplayName()))
		}

		if sel.Status != models.RsvpStatusAttending && sel.Status != models.RsvpStatusDeclined {
			return nil, appErrors.NewValidation("Each RSVP must be either attending or declined.")
		}

		mealRequired := event.Slug == s.cfg.MealEventSlug && sel.Status == models.RsvpStatusAttending
		if mealRequired {
			if strings.TrimSpace(sel.MealChoice) == "" {
				missingMeal = append(missingMeal, guest.DisplayName())
			} else if canonical, ok := s.canonicalMealChoice(sel.MealChoice); ok {
				sel.MealChoice = canonical
			} else {
				return nil, appErrors.NewValidation(fmt.Sprintf("%q is not one of the meal choices.", sel.MealChoice))
			}
		} else {
			// A meal choice on a declined status or a non-meal event is
			// treated as absent, not an error.
			sel.MealChoice = ""
		}

		key := sel.GuestID + "|" + sel.EventID
		if _, seen := deduped[key]; !seen {
			order = append(order, key)
		}
		deduped[key] = sel
	}

	if len(missingMeal) > 0 {
		sort.Strings(missingMeal)
		return nil, appErrors.NewValidation(fmt.Sprintf(
			"A meal choice is required for: %s.", strings.Join(missingMeal, ", ")))
	}

	dietary := make(map[string]string, len(input.DietaryUpdates))
	for _, update := range input.DietaryUpdates {
		if _, ok := guestsByID[update.GuestID]; !ok {
			return nil, appErrors.NewValidation("One of the dietary updates does not belong to this party.")
		}
		dietary[update.GuestID] = names.SanitizeText(update.DietaryRestrictions, names.DefaultMaxTextLength)
	}

	songs := make([]SongChoice, 0, len(input.SongRequests))
	for _, song := range input.SongRequests {
		title := names.SanitizeText(song.Song, maxSongFieldLength)
		if title == "" {
			continue
		}
		songs = append(songs, SongChoice{
			Song:   title,
			Artist: names.SanitizeText(song.Artist, maxSongFieldLength),
		})
	}
	if len(songs) > s.cfg.MaxSongRequests {
		return nil, appErrors.NewValidation(fmt.Sprintf(
			"You can request at most %d songs.", s.cfg.MaxSongRequests))
	}

	selections := make([]RsvpSelection, 0, len(order))
	for _, key := range order {
		selections = append(selections, deduped[key])
	}

	return &submissionPlan{
		partyID:    party.ID,
		selections: selections,
		dietary:    dietary,
		songs:      songs,
		notes:      names.SanitizeText(input.Notes, s.cfg.MaxNoteLength),
	}, nil
}

// canonicalMealChoice matches the submitted choice against the configured
// enumeration case-insensitively and returns the configured spelling.
func (s *SubmissionService) canonicalMealChoice(choice string) (string, bool) {
	trimmed := strings.TrimSpace(choice)
	for _, valid := range s.cfg.MealChoices {
		if strings.EqualFold(trimmed, valid) {
			return valid, true
		}
	}
	return "", false
}

// applyRsvps replaces the status and meal choice for every validated pair and
// appends one history record per changed entry.
func (s *SubmissionService) applyRsvps(ctx context.Context, tx *gorm.DB, plan *submissionPlan, now time.Time) error {
	for _, sel := range plan.selections {
		var existing models.Rsvp
		err := tx.WithContext(ctx).
			Where("guest_id = ? AND event_id = ?", sel.GuestID, sel.EventID).
			First(&existing).Error

		previous := models.RsvpStatusPending
		switch {
		case err == nil:
			previous = existing.Status
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Invitations create pending rows; recreate one defensively if
			// it is missing so the unique (guest, event) key stays intact.
			existing = models.Rsvp{GuestID: sel.GuestID, EventID: sel.EventID, Status: models.RsvpStatusPending}
			if err := tx.Create(&existing).Error; err != nil {
				return fmt.Errorf("create rsvp row: %w", err)
			}
		default:
			return fmt.Errorf("load rsvp row: %w", err)
		}

		changed := previous != sel.Status || existing.MealChoice != sel.MealChoice
		if !changed {
			continue
		}

		if err := tx.Model(&models.Rsvp{}).
			Where("guest_id = ? AND event_id = ?", sel.GuestID, sel.EventID).
			Updates(map[string]any{
				"status":      sel.Status,
				"meal_choice": sel.MealChoice,
				"updated_at":  now,
			}).Error; err != nil {
			return fmt.Errorf("update rsvp: %w", err)
		}

		detail := datatypes.JSON(fmt.Sprintf(`{"meal_choice":%q}`, sel.MealChoice))
		history := models.RsvpHistory{
			GuestID:        sel.GuestID,
			EventID:        sel.EventID,
			PreviousStatus: previous,
			NewStatus:      sel.Status,
			Detail:         detail,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("append rsvp history: %w", err)
		}
	}

	return nil
}
