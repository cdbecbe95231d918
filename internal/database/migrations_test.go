package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbeaudin/maplewood/internal/models"
)

func TestAutoMigrateAndSeed(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAndSeed(db))

	for _, table := range []string{"parties", "guests", "events", "invitations", "rsvps", "rsvp_histories", "song_requests", "confirmations"} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	var events []models.Event
	require.NoError(t, db.Order("display_order").Find(&events).Error)
	require.Len(t, events, 2)
	require.Equal(t, "ceremony", events[0].Slug)
	require.Equal(t, "reception", events[1].Slug)

	// Seeding twice must not duplicate events.
	require.NoError(t, SeedData(db))
	var count int64
	require.NoError(t, db.Model(&models.Event{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "rsvp", Name: "maplewood", Password: "secret"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "dbname=maplewood")
	require.Contains(t, dsn, "sslmode=disable")

	_, err = buildPostgresDSN(Config{})
	require.Error(t, err)
}

func TestBuildMySQLDSN(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "rsvp", Password: "secret", Name: "maplewood"})
	require.NoError(t, err)
	require.Contains(t, dsn, "rsvp:secret@tcp(127.0.0.1:3306)/maplewood")
	require.Contains(t, dsn, "parseTime=True")
}
