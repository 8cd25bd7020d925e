package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/middleware"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"gorm.io/gorm"
)

type ProfessionalController struct {
	Uploader utils.Uploader
}

// GetProfessionals lists verified professionals, optionally by ?specialty.
func (p *ProfessionalController) GetProfessionals(c *fiber.Ctx) error {
	page := utils.ParsePage(c)

	query := db.DB.Model(&models.Professional{}).Where("verified = ?", true)
	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("LOWER(specialty) = LOWER(?)", specialty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professionals", err)
	}

	var professionals []models.Professional
	if err := query.Preload("User").
		Order("id").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&professionals).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professionals", err)
	}

	return c.JSON(fiber.Map{
		"professionals": professionals,
		"pagination":    page.Meta(total),
	})
}

// GetProfessional returns a professional with the sessions they offer.
func (p *ProfessionalController) GetProfessional(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var pro models.Professional
	if err := db.DB.Preload("User").
		Preload("Sessions", "enabled = ?", true).
		Preload("Sessions.SessionTemplate").
		First(&pro, id).Error; err != nil {
		return lookupError(c, "Professional", err)
	}
	return c.JSON(pro)
}

// GetProfessionalSessions returns the enabled, active sessions a professional offers.
func (p *ProfessionalController) GetProfessionalSessions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}

	var count int64
	if err := db.DB.Model(&models.Professional{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professional", err)
	}
	if count == 0 {
		return utils.RespondError(c, fiber.StatusNotFound, "Professional not found", nil)
	}

	var sessions []models.ProfessionalSession
	if err := db.DB.
		InnerJoins("SessionTemplate", db.DB.Where(&models.SessionTemplate{Active: true})).
		Where("professional_sessions.professional_id = ? AND professional_sessions.enabled = ?", id, true).
		Order("professional_sessions.id").
		Find(&sessions).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch sessions", err)
	}
	return c.JSON(sessions)
}

// UpdateMyAvailability overwrites the caller's weekly availability.
func (p *ProfessionalController) UpdateMyAvailability(c *fiber.Ctx) error {
	pro, err := professionalFor(middleware.Actor(c))
	if err != nil {
		return profileError(c, err)
	}
	return p.replaceAvailability(c, pro)
}

// UpdateAvailability overwrites any professional's weekly availability.
func (p *ProfessionalController) UpdateAvailability(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var pro models.Professional
	if err := db.DB.First(&pro, id).Error; err != nil {
		return lookupError(c, "Professional", err)
	}
	return p.replaceAvailability(c, &pro)
}

func (p *ProfessionalController) replaceAvailability(c *fiber.Ctx, pro *models.Professional) error {
	if !authz.Allow(middleware.Actor(c), authz.ActionUpdate, pro.AvailabilityResource()) {
		return forbidden(c)
	}

	var weekly models.WeeklyAvailability
	if err := c.BodyParser(&weekly); err != nil {
		return badRequest(c, fmt.Errorf("cannot parse JSON: %w", err))
	}
	if err := weekly.Validate(); err != nil {
		return badRequest(c, utils.NewValidationError("weekly_availability", err.Error()))
	}
	if weekly == nil {
		weekly = models.WeeklyAvailability{}
	}

	if err := db.DB.Model(pro).Update("weekly_availability", weekly).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to update availability", err)
	}
	pro.WeeklyAvailability = weekly
	return c.JSON(pro)
}

type profileInput struct {
	Title     *string `json:"title" validate:"omitempty,max=100"`
	Specialty *string `json:"specialty" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=5000"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Address   *string `json:"address" validate:"omitempty,max=255"`
	City      *string `json:"city" validate:"omitempty,max=100"`
}

// UpdateMyProfile updates the caller's public profile fields.
func (p *ProfessionalController) UpdateMyProfile(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	pro, err := professionalFor(actor)
	if err != nil {
		return profileError(c, err)
	}
	if !authz.Can(actor, authz.ActionUpdate, pro) {
		return forbidden(c)
	}

	var input profileInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"title":     input.Title,
		"specialty": input.Specialty,
		"bio":       input.Bio,
		"phone":     input.Phone,
		"address":   input.Address,
		"city":      input.City,
	} {
		if value != nil {
			updates[column] = *value
		}
	}
	if len(updates) == 0 {
		return badRequest(c, errors.New("no fields to update"))
	}

	if err := db.DB.Model(pro).Updates(updates).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to update profile", err)
	}
	if err := db.DB.First(pro, pro.ID).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch profile", err)
	}
	return c.JSON(pro)
}

// UploadAvatar stores the "avatar" form file and saves its URL on the profile.
func (p *ProfessionalController) UploadAvatar(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	pro, err := professionalFor(actor)
	if err != nil {
		return profileError(c, err)
	}
	if p.Uploader == nil {
		return utils.RespondError(c, fiber.StatusServiceUnavailable, "Image uploads are not configured", nil)
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		return badRequest(c, utils.NewValidationError("avatar", "file is required"))
	}
	file, err := header.Open()
	if err != nil {
		return badRequest(c, err)
	}
	defer file.Close()

	url, err := p.Uploader.Upload(c.UserContext(), file, fmt.Sprintf("professional_%d", pro.ID), "carebook/avatars")
	if err != nil {
		return utils.RespondError(c, fiber.StatusBadGateway, "Failed to upload image", err)
	}
	if err := db.DB.Model(pro).Update("avatar_url", url).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to update profile", err)
	}

	return c.JSON(fiber.Map{"avatar_url": url})
}

type verifyInput struct {
	Verified *bool `json:"verified" validate:"required"`
}

// VerifyProfessional marks a professional bookable or not.
func (p *ProfessionalController) VerifyProfessional(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var input verifyInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	var pro models.Professional
	if err := db.DB.First(&pro, id).Error; err != nil {
		return lookupError(c, "Professional", err)
	}
	if !authz.Allow(middleware.Actor(c), authz.ActionVerify, pro.AuthzResource()) {
		return forbidden(c)
	}

	updates := map[string]interface{}{"verified": *input.Verified, "verified_at": nil}
	if *input.Verified {
		updates["verified_at"] = time.Now().UTC()
	}
	if err := db.DB.Model(&pro).Updates(updates).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to verify professional", err)
	}
	if err := db.DB.First(&pro, id).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professional", err)
	}
	return c.JSON(pro)
}

func profileError(c *fiber.Ctx, err error) error {
	if errors.Is(err, errNoProfile) || errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.RespondError(c, fiber.StatusNotFound, "Professional profile not found", nil)
	}
	return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professional profile", err)
}
