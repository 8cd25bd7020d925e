// Package booking guards appointment creation against double booking.
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meinhoongagan/carebook/models"
	"gorm.io/gorm"
)

// ErrSlotUnavailable means a live appointment already holds the professional
// at that exact instant.
var ErrSlotUnavailable = errors.New("slot no longer available")

// EnsureSlotFree fails with ErrSlotUnavailable when a non-cancelled
// appointment exists for the professional at exactly at.
func EnsureSlotFree(tx *gorm.DB, professionalID uint, at time.Time) error {
	var count int64
	err := tx.Model(&models.Appointment{}).
		Where("professional_id = ? AND scheduled_at = ? AND status <> ?", professionalID, at.UTC(), models.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check slot: %w", err)
	}
	if count > 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// Book inserts appt after checking the slot inside the same transaction. A
// racing insert that slips past the check is rejected by the unique index and
// reported as ErrSlotUnavailable too.
func Book(conn *gorm.DB, appt *models.Appointment) error {
	appt.ScheduledAt = appt.ScheduledAt.UTC()
	if appt.Status == "" {
		appt.Status = models.StatusPending
	}

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := EnsureSlotFree(tx, appt.ProfessionalID, appt.ScheduledAt); err != nil {
			return err
		}
		return tx.Create(appt).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSlotUnavailable), isUniqueViolation(err):
		return ErrSlotUnavailable
	default:
		return fmt.Errorf("failed to create appointment: %w", err)
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
