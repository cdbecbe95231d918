package database

import (
	"gorm.io/gorm"

	"github.com/jbeaudin/maplewood/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Party{},
		&models.Guest{},
		&models.Event{},
		&models.Invitation{},
		&models.Rsvp{},
		&models.RsvpHistory{},
		&models.SongRequest{},
		&models.Confirmation{},
	)
}

// SeedData inserts the default events so a fresh install has a working
// schedule. Admins can rename or reorder them; the slugs stay stable.
func SeedData(db *gorm.DB) error {
	events := []models.Event{
		{
			Slug:         "ceremony",
			Name:         "Wedding Ceremony",
			DisplayOrder: 1,
		},
		{
			Slug:         "reception",
			Name:         "Reception & Dinner",
			DisplayOrder: 2,
		},
	}

	for _, event := range events {
		if err := db.Where(models.Event{Slug: event.Slug}).Attrs(event).FirstOrCreate(&models.Event{}).Error; err != nil {
			return err
		}
	}

	return nil
}
