package cron

import (
	"fmt"
	"time"

	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderLead is how far ahead of a confirmed appointment the reminder goes out.
const ReminderLead = time.Hour

// Start schedules the reminder and completion jobs on spec and starts the
// scheduler. Callers stop it on shutdown.
func Start(spec string, conn *gorm.DB, mailer utils.Mailer, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		sent, err := SendReminders(conn, mailer, time.Now())
		if err != nil {
			log.Error("appointment reminders failed", zap.Error(err))
			return
		}
		if sent > 0 {
			log.Info("appointment reminders sent", zap.Int("count", sent))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add reminder job: %w", err)
	}

	_, err = c.AddFunc(spec, func() {
		n, err := CompleteElapsed(conn, time.Now())
		if err != nil {
			log.Error("completion sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("appointments marked completed", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add completion job: %w", err)
	}

	c.Start()
	log.Info("cron scheduler started", zap.String("spec", spec))
	return c, nil
}

// SendReminders emails the patient of every confirmed appointment starting
// within ReminderLead of now that has not been reminded yet. Delivery
// failures leave the appointment eligible for the next run.
func SendReminders(conn *gorm.DB, mailer utils.Mailer, now time.Time) (int, error) {
	var appointments []models.Appointment
	err := conn.Preload("User").Preload("SessionTemplate").Preload("Professional.User").
		Where("status = ? AND reminder_sent_at IS NULL AND scheduled_at > ? AND scheduled_at <= ?",
			models.StatusConfirmed, now.UTC(), now.Add(ReminderLead).UTC()).
		Find(&appointments).Error
	if err != nil {
		return 0, fmt.Errorf("fetch appointments for reminders: %w", err)
	}

	sent := 0
	for i := range appointments {
		appt := &appointments[i]
		if appt.User == nil {
			continue
		}
		subject, body := reminderEmail(appt)
		if err := mailer.Send(appt.User.Email, subject, body); err != nil {
			zap.L().Warn("reminder not sent", zap.Uint("appointment_id", appt.ID), zap.Error(err))
			continue
		}
		if err := conn.Model(appt).Update("reminder_sent_at", now.UTC()).Error; err != nil {
			return sent, fmt.Errorf("stamp reminder for appointment %d: %w", appt.ID, err)
		}
		sent++
	}
	return sent, nil
}

// CompleteElapsed marks confirmed appointments whose time has fully passed
// as completed.
func CompleteElapsed(conn *gorm.DB, now time.Time) (int64, error) {
	var candidates []models.Appointment
	if err := conn.Select("id", "scheduled_at", "duration_minutes").
		Where("status = ? AND scheduled_at < ?", models.StatusConfirmed, now.UTC()).
		Find(&candidates).Error; err != nil {
		return 0, fmt.Errorf("fetch elapsed appointments: %w", err)
	}

	var ids []uint
	for _, appt := range candidates {
		if !appt.EndsAt().After(now) {
			ids = append(ids, appt.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	result := conn.Model(&models.Appointment{}).
		Where("id IN ? AND status = ?", ids, models.StatusConfirmed).
		Update("status", models.StatusCompleted)
	if result.Error != nil {
		return 0, fmt.Errorf("complete appointments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func reminderEmail(appt *models.Appointment) (string, string) {
	session := "appointment"
	if appt.SessionTemplate != nil {
		session = appt.SessionTemplate.Name
	}
	professional := "your professional"
	if appt.Professional != nil && appt.Professional.User != nil {
		professional = appt.Professional.User.Name
	}

	subject := fmt.Sprintf("Reminder: Upcoming Appointment - %s", session)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Session:</strong> %s</li>
			<li><strong>Professional:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
		</ul>
		<p>If you need to cancel, please do so as soon as possible.</p>
	`, appt.User.Name, session, professional,
		appt.ScheduledAt.UTC().Format("2006-01-02 15:04 MST"),
		appt.EndsAt().UTC().Format("2006-01-02 15:04 MST"))
	return subject, body
}
