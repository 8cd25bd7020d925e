package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/booking"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/middleware"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"go.uber.org/zap"
)

type AppointmentController struct {
	Mailer   utils.Mailer
	Location *time.Location
}

type createAppointmentInput struct {
	ProfessionalID    uint   `json:"professional_id" validate:"required"`
	SessionTemplateID uint   `json:"session_template_id" validate:"required"`
	ScheduledAt       string `json:"scheduled_at" validate:"required"`
	Notes             string `json:"notes" validate:"max=2000"`
}

// CreateAppointment books a session with a verified professional. The slot
// is claimed through the booking guard; a lost race answers 409.
func (a *AppointmentController) CreateAppointment(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	var input createAppointmentInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
	if err != nil {
		return badRequest(c, utils.NewValidationError("scheduled_at", "must be an RFC3339 timestamp"))
	}
	if !scheduledAt.After(time.Now()) {
		return badRequest(c, utils.NewValidationError("scheduled_at", "must be in the future"))
	}

	var pro models.Professional
	if err := db.DB.Preload("User").First(&pro, input.ProfessionalID).Error; err != nil {
		return lookupError(c, "Professional", err)
	}
	if !pro.Verified {
		return utils.RespondError(c, fiber.StatusForbidden, "Professional not verified", nil)
	}

	var tpl models.SessionTemplate
	if err := db.DB.Where("active = ?", true).First(&tpl, input.SessionTemplateID).Error; err != nil {
		return lookupError(c, "Session template", err)
	}

	var offered int64
	if err := db.DB.Model(&models.ProfessionalSession{}).
		Where("professional_id = ? AND session_template_id = ? AND enabled = ?", pro.ID, tpl.ID, true).
		Count(&offered).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professional sessions", err)
	}
	if offered == 0 {
		return badRequest(c, errors.New("professional does not offer this session"))
	}

	appt := models.Appointment{
		ProfessionalID:    pro.ID,
		UserID:            actor.UserID,
		SessionTemplateID: tpl.ID,
		DurationMinutes:   tpl.DurationMinutes,
		ScheduledAt:       scheduledAt,
		Status:            models.StatusPending,
		Notes:             strings.TrimSpace(input.Notes),
	}
	if err := booking.Book(db.DB, &appt); err != nil {
		if errors.Is(err, booking.ErrSlotUnavailable) {
			return utils.RespondError(c, fiber.StatusConflict, "Slot no longer available", err)
		}
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to create appointment", err)
	}

	var patient models.User
	if err := db.DB.First(&patient, actor.UserID).Error; err != nil {
		utils.Log().Warn("appointment notification skipped", zap.Uint("appointment_id", appt.ID), zap.Error(err))
	} else {
		when := a.format(appt.ScheduledAt)
		notify(a.Mailer, patient.Email, "Appointment requested",
			fmt.Sprintf("<p>Dear %s,</p><p>Your %s on %s has been requested and is awaiting confirmation.</p>", patient.Name, tpl.Name, when))
		if pro.User != nil {
			notify(a.Mailer, pro.User.Email, "New appointment request",
				fmt.Sprintf("<p>%s requested a %s on %s.</p>", patient.Name, tpl.Name, when))
		}
	}

	appt.SessionTemplate = &tpl
	return c.Status(fiber.StatusCreated).JSON(appt)
}

// GetAppointments lists the caller's appointments. Admins see all of them.
func (a *AppointmentController) GetAppointments(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	page := utils.ParsePage(c)

	query := db.DB.Model(&models.Appointment{})
	switch actor.Role {
	case authz.RoleAdmin:
	case authz.RoleProfessional:
		query = query.Where("professional_id = ? OR user_id = ?", actor.ProfessionalID, actor.UserID)
	default:
		query = query.Where("user_id = ?", actor.UserID)
	}
	if status := strings.ToUpper(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
	}

	var appointments []models.Appointment
	if err := query.Preload("SessionTemplate").
		Order("scheduled_at DESC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&appointments).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
	}

	return c.JSON(fiber.Map{
		"appointments": appointments,
		"pagination":   page.Meta(total),
	})
}

// GetAppointment returns one appointment to its patient, its professional or an admin.
func (a *AppointmentController) GetAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	appt, err := findAppointment(id)
	if err != nil {
		return lookupError(c, "Appointment", err)
	}
	if !authz.Can(middleware.Actor(c), authz.ActionRead, appt) {
		return forbidden(c)
	}
	return c.JSON(appt)
}

type statusInput struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED CANCELLED COMPLETED NO_SHOW"`
	Reason string `json:"reason" validate:"max=500"`
}

// UpdateAppointmentStatus moves an appointment along its lifecycle. Patients
// may only cancel.
func (a *AppointmentController) UpdateAppointmentStatus(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	var input statusInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}
	next := models.AppointmentStatus(input.Status)

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	appt, err := findAppointment(id)
	if err != nil {
		return lookupError(c, "Appointment", err)
	}
	if !authz.Can(actor, authz.ActionUpdate, appt) {
		return forbidden(c)
	}
	managing := actor.Role == authz.RoleAdmin || (actor.ProfessionalID != 0 && actor.ProfessionalID == appt.ProfessionalID)
	if !managing && next != models.StatusCancelled {
		return forbidden(c)
	}

	if err := appt.UpdateStatus(db.DB, next, input.Reason); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return badRequest(c, err)
		}
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to update appointment", err)
	}

	if appt.User != nil && (next == models.StatusConfirmed || next == models.StatusCancelled) {
		notify(a.Mailer, appt.User.Email, "Appointment "+strings.ToLower(string(next)),
			fmt.Sprintf("<p>Dear %s,</p><p>Your appointment on %s is now %s.</p>", appt.User.Name, a.format(appt.ScheduledAt), strings.ToLower(string(next))))
	}

	return c.JSON(appt)
}

// DeleteAppointment soft-deletes an appointment, freeing its slot.
func (a *AppointmentController) DeleteAppointment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	result := db.DB.Delete(&models.Appointment{}, id)
	if result.Error != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to delete appointment", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.RespondError(c, fiber.StatusNotFound, "Appointment not found", nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func findAppointment(id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := db.DB.Preload("SessionTemplate").Preload("User").First(&appt, id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (a *AppointmentController) format(t time.Time) string {
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Mon 02 Jan 2006 15:04 MST")
}
