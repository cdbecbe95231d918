package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"https://rsvp.example.com"}, cfg.Server.AllowedOrigins)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 3*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, "couple", cfg.Auth.Admin.Username)
	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "maplewood-test", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.Equal(t, "reception", cfg.Rsvp.MealRequiredEvent)
	require.Equal(t, []string{"Beef", "Salmon", "Vegetarian", "Kids Meal"}, cfg.Rsvp.MealChoices)
	require.Equal(t, 5, cfg.Rsvp.MaxSongRequests)
	require.Equal(t, 48*time.Hour, cfg.Rsvp.DraftTTL)
	require.Equal(t, "@every 1m", cfg.Rsvp.RelaySchedule)

	// File overrides one limit; the rest keep defaults.
	require.Equal(t, 30, cfg.RateLimit.Lookup.MaxRequests)
	require.Equal(t, 2*time.Minute, cfg.RateLimit.Lookup.Window)
	require.Equal(t, 10, cfg.RateLimit.Submit.MaxRequests)
	require.Equal(t, time.Minute, cfg.RateLimit.Submit.Window)
}

func TestSubmissionConfigParsesDeadline(t *testing.T) {
	rsvp := RsvpConfig{
		Deadline:          "2026-09-01T00:00:00Z",
		MealRequiredEvent: "reception",
		MealChoices:       []string{"Beef"},
	}

	cfg, err := rsvp.SubmissionConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg.Deadline)
	require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), cfg.Deadline.UTC())

	rsvp.Deadline = "not-a-date"
	_, err = rsvp.SubmissionConfig()
	require.Error(t, err)

	rsvp.Deadline = ""
	cfg, err = rsvp.SubmissionConfig()
	require.NoError(t, err)
	require.Nil(t, cfg.Deadline)
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate())

	cfg.Auth.JWT.Secret = "secret"
	require.Error(t, cfg.Validate())

	cfg.Auth.SitePasswordHash = "$2a$10$hash"
	require.Error(t, cfg.Validate())

	cfg.Auth.Admin.Username = "couple"
	cfg.Auth.Admin.PasswordHash = "$2a$10$hash"
	require.NoError(t, cfg.Validate())
}
