package db

import (
	"fmt"

	"github.com/meinhoongagan/carebook/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table, including the partial unique index
// that keeps two live appointments off the same professional and instant.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Professional{},
		&models.SessionTemplate{},
		&models.ProfessionalSession{},
		&models.Appointment{},
		&models.PaymentIntent{},
		&models.NewsletterSubscription{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
