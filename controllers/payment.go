package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/middleware"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/payments"
	"github.com/meinhoongagan/carebook/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentController struct {
	Gateway  payments.Gateway
	Currency string
}

// CreatePaymentIntent opens a payment for the caller's appointment. An
// appointment keeps a single live intent; asking again returns it.
func (p *PaymentController) CreatePaymentIntent(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	appt, err := findAppointment(id)
	if err != nil {
		return lookupError(c, "Appointment", err)
	}
	if !authz.Allow(actor, authz.ActionCreate, authz.Resource{Kind: authz.KindPayment, OwnerID: appt.UserID}) {
		return forbidden(c)
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusConfirmed {
		return badRequest(c, errors.New("appointment is "+string(appt.Status)))
	}

	var existing models.PaymentIntent
	err = db.DB.Where("appointment_id = ? AND status IN ?", appt.ID, []models.PaymentStatus{models.PaymentPending, models.PaymentSucceeded}).
		First(&existing).Error
	switch {
	case err == nil:
		return c.JSON(existing)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch payment", err)
	}

	var offer models.ProfessionalSession
	price := 0.0
	err = db.DB.Preload("SessionTemplate").
		Where("professional_id = ? AND session_template_id = ?", appt.ProfessionalID, appt.SessionTemplateID).
		First(&offer).Error
	switch {
	case err == nil:
		price = offer.PriceFor()
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch session price", err)
	case appt.SessionTemplate != nil:
		price = appt.SessionTemplate.Price
	}
	amount := payments.MinorUnits(price)
	if amount <= 0 {
		return badRequest(c, errors.New("session has no price to pay"))
	}

	req := payments.IntentRequest{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		Amount:        amount,
		Currency:      p.Currency,
	}
	if appt.User != nil {
		req.Email = appt.User.Email
	}
	intent, err := p.Gateway.CreateIntent(c.UserContext(), req)
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadGateway, "Payment provider unavailable", err)
	}

	record := models.PaymentIntent{
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		Amount:        amount,
		Currency:      p.Currency,
		Provider:      p.Gateway.Name(),
		ProviderRef:   intent.ProviderRef,
		ClientSecret:  intent.ClientSecret,
		Status:        intent.Status,
		Metadata: datatypes.JSONMap{
			"professional_id":     strconv.FormatUint(uint64(appt.ProfessionalID), 10),
			"session_template_id": strconv.FormatUint(uint64(appt.SessionTemplateID), 10),
		},
	}
	if err := db.DB.Create(&record).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to save payment", err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetPayment returns a payment intent to its owner or an admin.
func (p *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var intent models.PaymentIntent
	if err := db.DB.First(&intent, id).Error; err != nil {
		return lookupError(c, "Payment", err)
	}
	if !authz.Can(middleware.Actor(c), authz.ActionRead, &intent) {
		return forbidden(c)
	}
	return c.JSON(intent)
}
