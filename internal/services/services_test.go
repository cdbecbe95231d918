package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/database/testutil"
	"github.com/jbeaudin/maplewood/internal/models"
)

// testFixture is a seeded database with one two-guest party invited to a
// ceremony and a reception, mirroring the typical production shape.
type testFixture struct {
	db        *gorm.DB
	party     models.Party
	robert    models.Guest
	emilie    models.Guest
	ceremony  models.Event
	reception models.Event
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	f := &testFixture{db: db}

	f.ceremony = models.Event{Slug: "ceremony", Name: "Ceremony", DisplayOrder: 1}
	f.reception = models.Event{Slug: "reception", Name: "Reception", DisplayOrder: 2}
	require.NoError(t, db.Create(&f.ceremony).Error)
	require.NoError(t, db.Create(&f.reception).Error)

	f.party = models.Party{
		Name:  "Beaudin Family",
		Email: "beaudins@example.com",
		Guests: []models.Guest{
			{FirstName: "Robert", LastName: "Beaudin", IsPrimary: true},
			{FirstName: "Émilie", LastName: "Beaudin"},
		},
	}
	require.NoError(t, db.Create(&f.party).Error)
	f.robert = f.party.Guests[0]
	f.emilie = f.party.Guests[1]

	for _, event := range []models.Event{f.ceremony, f.reception} {
		require.NoError(t, db.Create(&models.Invitation{PartyID: f.party.ID, EventID: event.ID}).Error)
		for _, guest := range f.party.Guests {
			require.NoError(t, db.Create(&models.Rsvp{
				GuestID: guest.ID,
				EventID: event.ID,
				Status:  models.RsvpStatusPending,
			}).Error)
		}
	}

	return f
}

func (f *testFixture) rsvpFor(t *testing.T, guestID, eventID string) models.Rsvp {
	t.Helper()
	var rsvp models.Rsvp
	require.NoError(t, f.db.Where("guest_id = ? AND event_id = ?", guestID, eventID).First(&rsvp).Error)
	return rsvp
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
