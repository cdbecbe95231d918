package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbeaudin/maplewood/internal/models"
	"github.com/jbeaudin/maplewood/pkg/mail"
)

type stubMailer struct {
	sent []mail.Message
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func submitFixtureParty(t *testing.T, f *testFixture, confirmations *ConfirmationService) *PartyGraph {
	t.Helper()

	service, err := NewSubmissionService(f.db, confirmations, submissionConfig())
	require.NoError(t, err)

	graph, err := service.Submit(context.Background(), SubmitInput{
		PartyID: f.party.ID,
		Rsvps: []RsvpSelection{
			{GuestID: f.robert.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusAttending},
			{GuestID: f.robert.ID, EventID: f.reception.ID, Status: models.RsvpStatusAttending, MealChoice: "Beef"},
			{GuestID: f.emilie.ID, EventID: f.ceremony.ID, Status: models.RsvpStatusDeclined},
			{GuestID: f.emilie.ID, EventID: f.reception.ID, Status: models.RsvpStatusDeclined},
		},
		SongRequests: []SongChoice{{Song: "September", Artist: "Earth, Wind & Fire"}},
	})
	require.NoError(t, err)
	return graph
}

func TestSubmissionQueuesConfirmation(t *testing.T) {
	f := newFixture(t)

	confirmations, err := NewConfirmationService(f.db, &stubMailer{})
	require.NoError(t, err)

	submitFixtureParty(t, f, confirmations)

	var queued []models.Confirmation
	require.NoError(t, f.db.Find(&queued).Error)
	require.Len(t, queued, 1)
	assert.Equal(t, f.party.ID, queued[0].PartyID)
	assert.Equal(t, "beaudins@example.com", queued[0].Recipient)
	assert.Contains(t, queued[0].Subject, "Beaudin Family")
	assert.Nil(t, queued[0].SentAt)
}

func TestDispatchPendingStampsPartyOnSuccess(t *testing.T) {
	f := newFixture(t)

	mailer := &stubMailer{}
	sentAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	confirmations, err := NewConfirmationService(f.db, mailer,
		WithConfirmationClock(fixedClock(sentAt)))
	require.NoError(t, err)

	submitFixtureParty(t, f, confirmations)

	require.NoError(t, confirmations.DispatchPending(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"beaudins@example.com"}, mailer.sent[0].To)

	var confirmation models.Confirmation
	require.NoError(t, f.db.First(&confirmation).Error)
	require.NotNil(t, confirmation.SentAt)
	assert.True(t, confirmation.SentAt.Equal(sentAt))

	var party models.Party
	require.NoError(t, f.db.First(&party, "id = ?", f.party.ID).Error)
	require.NotNil(t, party.ConfirmationSentAt)

	// A second run finds nothing pending and sends nothing new.
	require.NoError(t, confirmations.DispatchPending(context.Background()))
	assert.Len(t, mailer.sent, 1)
}

func TestDispatchPendingRecordsFailures(t *testing.T) {
	f := newFixture(t)

	mailer := &stubMailer{err: errors.New("smtp: connection refused")}
	confirmations, err := NewConfirmationService(f.db, mailer, WithMaxAttempts(2))
	require.NoError(t, err)

	submitFixtureParty(t, f, confirmations)

	require.NoError(t, confirmations.DispatchPending(context.Background()))

	var confirmation models.Confirmation
	require.NoError(t, f.db.First(&confirmation).Error)
	assert.Equal(t, 1, confirmation.Attempts)
	assert.Contains(t, confirmation.LastError, "connection refused")
	assert.Nil(t, confirmation.SentAt)

	var party models.Party
	require.NoError(t, f.db.First(&party, "id = ?", f.party.ID).Error)
	assert.Nil(t, party.ConfirmationSentAt)

	// The second attempt exhausts the cap; further runs skip the row.
	require.NoError(t, confirmations.DispatchPending(context.Background()))
	require.NoError(t, confirmations.DispatchPending(context.Background()))

	require.NoError(t, f.db.First(&confirmation).Error)
	assert.Equal(t, 2, confirmation.Attempts)
}

func TestDispatchPendingLeavesRowQueuedWhenMailDisabled(t *testing.T) {
	f := newFixture(t)

	mailer := &stubMailer{err: mail.ErrDisabled}
	confirmations, err := NewConfirmationService(f.db, mailer)
	require.NoError(t, err)

	submitFixtureParty(t, f, confirmations)

	require.NoError(t, confirmations.DispatchPending(context.Background()))

	var confirmation models.Confirmation
	require.NoError(t, f.db.First(&confirmation).Error)
	assert.Equal(t, 0, confirmation.Attempts)
	assert.Nil(t, confirmation.SentAt)
}

func TestNoConfirmationForPartyWithoutEmail(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Party{}).
		Where("id = ?", f.party.ID).
		Update("email", "").Error)

	confirmations, err := NewConfirmationService(f.db, &stubMailer{})
	require.NoError(t, err)

	submitFixtureParty(t, f, confirmations)

	var count int64
	require.NoError(t, f.db.Model(&models.Confirmation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRenderConfirmationBody(t *testing.T) {
	f := newFixture(t)

	confirmations, err := NewConfirmationService(f.db, &stubMailer{})
	require.NoError(t, err)

	graph := submitFixtureParty(t, f, confirmations)

	require.NoError(t, f.db.Model(&models.Guest{}).
		Where("id = ?", f.emilie.ID).
		Update("dietary_restrictions", "no peanuts").Error)
	graph, err = loadPartyGraph(context.Background(), f.db, f.party.ID)
	require.NoError(t, err)

	body := RenderConfirmationBody(graph)
	assert.Contains(t, body, "Hello Beaudin Family")
	assert.Contains(t, body, "Robert Beaudin: attending (Beef)")
	assert.Contains(t, body, "Émilie Beaudin: unable to attend")
	assert.Contains(t, body, "Émilie Beaudin: no peanuts")
	assert.Contains(t, body, "September by Earth, Wind & Fire")
}
