package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbeaudin/maplewood/internal/models"
	appErrors "github.com/jbeaudin/maplewood/pkg/errors"
)

func submissionConfig() SubmissionConfig {
	return SubmissionConfig{
		MealEventSlug: "reception",
		MealChoices:   []string{"Beef", "Salmon", "Vegetarian"},
	}
}

func newSubmissionService(t *testing.T, f *testFixture, cfg SubmissionConfig, opts ...SubmissionOption) *SubmissionService {
	t.Helper()
	service, err := NewSubmissionService(f.db, nil, cfg, opts...)
	require.NoError(t, err)
	return service
}

func TestSubmitHappyPath(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	graph, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Beef"},
			{GuestID: f.emilie.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
			{GuestID: f.emilie.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Salmon"},
		},
		DietaryUpdates: []DietaryUpdate{
			{GuestID: f.emilie.ID, DietaryRestrictions: "no peanuts"},
		},
		SongRequests: []SongChoice{
			{Song: "September", Artist: "Earth, Wind & Fire"},
		},
		Notes: "So excited!",
	})
	require.NoError(t, err)

	require.NotNil(t, graph.SubmittedAt)
	assert.Equal(t, "So excited!", graph.Notes)
	require.Len(t, graph.SongRequests, 1)
	assert.Equal(t, "September", graph.SongRequests[0].Song)

	rsvp := f.rsvpFor(t, f.robert.ID, f.reception.ID)
	assert.Equal(t, models.RsvpStatusAttending, rsvp.Status)
	assert.Equal(t, "Beef", rsvp.MealChoice)

	var emilie models.Guest
	require.NoError(t, f.db.First(&emilie, "id = ?", f.emilie.ID).Error)
	assert.Equal(t, "no peanuts", emilie.DietaryRestrictions)

	var historyCount int64
	require.NoError(t, f.db.Model(&models.RsvpHistory{}).Count(&historyCount).Error)
	assert.EqualValues(t, 4, historyCount)
}

func TestSubmitResubmissionReplacesNotMerges(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	first := SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Beef"},
		},
		SongRequests: []SongChoice{
			{Song: "Song A"},
			{Song: "Song B"},
		},
		Notes: "first note",
	}
	_, err := service.Submit(context.Background(), first)
	require.NoError(t, err)

	graph, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusDeclined},
		},
		SongRequests: []SongChoice{
			{Song: "Song C"},
		},
		Notes: "second note",
	})
	require.NoError(t, err)

	// Songs replace the previous set rather than appending to it.
	require.Len(t, graph.SongRequests, 1)
	assert.Equal(t, "Song C", graph.SongRequests[0].Song)
	assert.Equal(t, "second note", graph.Notes)

	rsvp := f.rsvpFor(t, f.robert.ID, f.reception.ID)
	assert.Equal(t, models.RsvpStatusDeclined, rsvp.Status)
	assert.Empty(t, rsvp.MealChoice)
}

func TestSubmitIdempotentResubmission(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	input := SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Salmon"},
		},
	}
	_, err := service.Submit(context.Background(), input)
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), input)
	require.NoError(t, err)

	rsvp := f.rsvpFor(t, f.robert.ID, f.reception.ID)
	assert.Equal(t, models.RsvpStatusAttending, rsvp.Status)
	assert.Equal(t, "Salmon", rsvp.MealChoice)

	// The unchanged resubmission appends no history.
	var historyCount int64
	require.NoError(t, f.db.Model(&models.RsvpHistory{}).Count(&historyCount).Error)
	assert.EqualValues(t, 1, historyCount)
}

func TestSubmitEmptySongListKeepsExistingRequests(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
		SongRequests: []SongChoice{{Song: "Keeper"}},
	})
	require.NoError(t, err)

	// Whitespace-only titles filter down to an empty list, which leaves the
	// prior requests alone.
	graph, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
		SongRequests: []SongChoice{{Song: "   ", Artist: "Ghost"}},
	})
	require.NoError(t, err)

	require.Len(t, graph.SongRequests, 1)
	assert.Equal(t, "Keeper", graph.SongRequests[0].Song)
}

func TestSubmitMealClearedOnDecline(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Beef"},
		},
	})
	require.NoError(t, err)

	_, err = service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusDeclined, MealChoice: "Beef"},
		},
	})
	require.NoError(t, err)

	rsvp := f.rsvpFor(t, f.robert.ID, f.reception.ID)
	assert.Equal(t, models.RsvpStatusDeclined, rsvp.Status)
	assert.Empty(t, rsvp.MealChoice)
}

func TestSubmitMissingMealNamesGuests(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending},
			{GuestID: f.emilie.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending},
		},
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "Robert Beaudin")
	assert.Contains(t, appErr.Message, "Émilie Beaudin")
}

func TestSubmitMealChoiceCanonicalized(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "salmon"},
		},
	})
	require.NoError(t, err)

	rsvp := f.rsvpFor(t, f.robert.ID, f.reception.ID)
	assert.Equal(t, "Salmon", rsvp.MealChoice)
}

func TestSubmitRejectsUnknownMealChoice(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Lobster"},
		},
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSubmitUninvitedEventCommitsNothing(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	brunch := models.Event{Slug: "brunch", Name: "Brunch", DisplayOrder: 3}
	require.NoError(t, f.db.Create(&brunch).Error)

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
			{GuestID: f.robert.ID, EventID: brunch.ID, Status: models.RsvpStatusAttending},
		},
		Notes: "should not persist",
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// The valid ceremony entry must not have been applied either.
	rsvp := f.rsvpFor(t, f.robert.ID, f.ceremony.ID)
	assert.Equal(t, models.RsvpStatusPending, rsvp.Status)

	var party models.Party
	require.NoError(t, f.db.First(&party, "id = ?", f.party.ID).Error)
	assert.Nil(t, party.SubmittedAt)
	assert.Empty(t, party.Notes)
}

func TestSubmitRejectsForeignGuest(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	other := models.Party{
		Name:   "Other Party",
		Email:  "other@example.com",
		Guests: []models.Guest{{FirstName: "Sam", LastName: "Other"}},
	}
	require.NoError(t, f.db.Create(&other).Error)

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: other.Guests[0].ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSubmitRejectsPendingStatus(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusPending},
		},
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSubmitDeadlineBlocksSubmitNotLookup(t *testing.T) {
	f := newFixture(t)

	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := submissionConfig()
	cfg.Deadline = &deadline

	service := newSubmissionService(t, f, cfg,
		WithSubmissionClock(fixedClock(deadline.Add(time.Hour))))

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDeadlinePassed)

	// The lookup path stays open after the deadline.
	lookup, err := NewLookupService(f.db)
	require.NoError(t, err)
	graph, err := lookup.Lookup(context.Background(), "Robert", "Beaudin")
	require.NoError(t, err)
	assert.Equal(t, f.party.ID, graph.ID)
}

func TestSubmitAtDeadlineStillAccepted(t *testing.T) {
	f := newFixture(t)

	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := submissionConfig()
	cfg.Deadline = &deadline

	service := newSubmissionService(t, f, cfg, WithSubmissionClock(fixedClock(deadline)))

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
	})
	require.NoError(t, err)
}

func TestSubmitDuplicatePairLastEntryWins(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Beef"},
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusDeclined},
		},
	})
	require.NoError(t, err)

	rsvp := f.rsvpFor(t, f.robert.ID, f.reception.ID)
	assert.Equal(t, models.RsvpStatusDeclined, rsvp.Status)
}

func TestSubmitSongCapEnforced(t *testing.T) {
	f := newFixture(t)
	cfg := submissionConfig()
	cfg.MaxSongRequests = 2
	service := newSubmissionService(t, f, cfg)

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
		SongRequests: []SongChoice{{Song: "One"}, {Song: "Two"}, {Song: "Three"}},
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "at most 2")
}

func TestSubmitNoteTruncatedToConfiguredLength(t *testing.T) {
	f := newFixture(t)
	cfg := submissionConfig()
	cfg.MaxNoteLength = 10
	service := newSubmissionService(t, f, cfg)

	graph, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
		},
		Notes: strings.Repeat("x", 50),
	})
	require.NoError(t, err)
	assert.Len(t, graph.Notes, 10)
}

func TestSubmitUnknownPartyReturnsNotFound(t *testing.T) {
	f := newFixture(t)
	service := newSubmissionService(t, f, submissionConfig())

	_, err := service.Submit(context.Background(), SubmitInput{
		PartyID: "11111111-1111-1111-1111-111111111111",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartyNotFound)
}
