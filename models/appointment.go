package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/meinhoongagan/carebook/authz"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Appointment is a booked session. At most one non-cancelled appointment may
// exist per professional and start instant; the partial unique index below
// enforces it in the database.
type Appointment struct {
	gorm.Model
	ProfessionalID    uint              `json:"professional_id" gorm:"not null;uniqueIndex:idx_professional_slot,where:status <> 'CANCELLED' AND deleted_at IS NULL"`
	Professional      *Professional     `json:"professional,omitempty" gorm:"foreignKey:ProfessionalID"`
	ScheduledAt       time.Time         `json:"scheduled_at" gorm:"not null;uniqueIndex:idx_professional_slot,where:status <> 'CANCELLED' AND deleted_at IS NULL"`
	UserID            uint              `json:"user_id" gorm:"not null;index"`
	User              *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	SessionTemplateID uint              `json:"session_template_id" gorm:"not null"`
	SessionTemplate   *SessionTemplate  `json:"session_template,omitempty" gorm:"foreignKey:SessionTemplateID"`
	DurationMinutes   int               `json:"duration_minutes" gorm:"not null"`
	Status            AppointmentStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Notes             string            `json:"notes"`
	CancelReason      string            `json:"cancel_reason,omitempty"`
	ReminderSentAt    *time.Time        `json:"reminder_sent_at,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// EndsAt is the instant the appointment's own duration runs out.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

func (a *Appointment) AuthzResource() authz.Resource {
	return authz.Resource{Kind: authz.KindAppointment, OwnerID: a.UserID, ProfessionalID: a.ProfessionalID}
}

// CanTransition reports whether the status may move from the current one to next.
func (a *Appointment) CanTransition(next AppointmentStatus) error {
	switch a.Status {
	case StatusPending:
		if next != StatusConfirmed && next != StatusCancelled {
			return fmt.Errorf("%w: from PENDING to %s", ErrInvalidTransition, next)
		}
	case StatusConfirmed:
		if next != StatusCompleted && next != StatusCancelled && next != StatusNoShow {
			return fmt.Errorf("%w: from CONFIRMED to %s", ErrInvalidTransition, next)
		}
	default:
		return fmt.Errorf("%w: no transitions allowed from %s", ErrInvalidTransition, a.Status)
	}
	return nil
}

// UpdateStatus validates and persists a status change.
func (a *Appointment) UpdateStatus(tx *gorm.DB, next AppointmentStatus, reason string) error {
	if err := a.CanTransition(next); err != nil {
		return err
	}

	updates := map[string]interface{}{"status": next}
	if next == StatusCancelled && reason != "" {
		updates["cancel_reason"] = reason
	}
	if err := tx.Model(a).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	a.Status = next
	if next == StatusCancelled {
		a.CancelReason = reason
	}
	return nil
}
