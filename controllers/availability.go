package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/availability"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
)

// bookedLookback widens the booking query so appointments that start the
// evening before the range and run into it still block slots.
const bookedLookback = 24 * time.Hour

type AvailabilityController struct {
	Location    *time.Location
	DefaultDays int
	MaxDays     int
}

type bookedView struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

// GetAvailability returns the bookable 30 minute slots of a verified
// professional for ?date (default today) and the following ?days days.
func (a *AvailabilityController) GetAvailability(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	now := time.Now()
	start := utils.StartOfDay(now, a.Location)
	if s := c.Query("date"); s != "" {
		start, err = utils.ParseDate(s, a.Location)
		if err != nil {
			return badRequest(c, utils.NewValidationError("date", err.Error()))
		}
	}

	days := a.DefaultDays
	if s := c.Query("days"); s != "" {
		days, err = strconv.Atoi(s)
		if err != nil {
			return badRequest(c, utils.NewValidationError("days", "must be an integer"))
		}
	}
	days = min(max(days, 1), a.MaxDays)

	var pro models.Professional
	if err := db.DB.First(&pro, id).Error; err != nil {
		return lookupError(c, "Professional", err)
	}
	if !pro.Verified {
		return utils.RespondError(c, fiber.StatusForbidden, "Professional not verified", nil)
	}

	end := start.AddDate(0, 0, days)

	var appointments []models.Appointment
	if err := db.DB.
		Select("scheduled_at", "duration_minutes").
		Where("professional_id = ? AND status <> ? AND scheduled_at >= ? AND scheduled_at < ?",
			pro.ID, models.StatusCancelled, start.Add(-bookedLookback).UTC(), end.UTC()).
		Order("scheduled_at").
		Find(&appointments).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch appointments", err)
	}

	booked := make([]availability.Booked, 0, len(appointments))
	views := make([]bookedView, 0, len(appointments))
	for _, appt := range appointments {
		b := availability.Booked{Start: appt.ScheduledAt.In(a.Location), DurationMinutes: appt.DurationMinutes}
		if !b.End().After(start) {
			continue
		}
		booked = append(booked, b)
		views = append(views, bookedView{Start: b.Start, End: b.End(), DurationMinutes: b.DurationMinutes})
	}

	return c.JSON(fiber.Map{
		"professional_id": pro.ID,
		"start_date":      start.Format(utils.DateLayout),
		"days":            availability.Resolve(pro.WeeklyAvailability, booked, start, end, now),
		"booked":          views,
	})
}
