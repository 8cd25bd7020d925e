package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/middleware"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"gorm.io/gorm"
)

// SessionController serves the session template catalogue and the
// professionals' assignments of it.
type SessionController struct{}

// GetAllSessions godoc
// @Summary List active session templates
// @Tags sessions
// @Produce json
// @Success 200 {array} models.SessionTemplate
// @Router /sessions [get]
func (s *SessionController) GetAllSessions(c *fiber.Ctx) error {
	var templates []models.SessionTemplate
	if err := db.DB.Where("active = ?", true).Order("name").Find(&templates).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch sessions", err)
	}
	return c.JSON(templates)
}

// GetSession godoc
// @Summary Get a session template by ID
// @Tags sessions
// @Produce json
// @Param id path int true "Session template ID"
// @Success 200 {object} models.SessionTemplate
// @Failure 404 {object} utils.ErrorResponse
// @Router /sessions/{id} [get]
func (s *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var tpl models.SessionTemplate
	if err := db.DB.First(&tpl, id).Error; err != nil {
		return lookupError(c, "Session template", err)
	}
	return c.JSON(tpl)
}

type sessionInput struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Description     string  `json:"description" validate:"max=2000"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0,max=480"`
	Price           float64 `json:"price" validate:"gte=0"`
	Active          *bool   `json:"active"`
}

func (in sessionInput) apply(tpl *models.SessionTemplate) {
	tpl.Name = in.Name
	tpl.Description = in.Description
	tpl.DurationMinutes = in.DurationMinutes
	tpl.Price = in.Price
	if in.Active != nil {
		tpl.Active = *in.Active
	}
}

// CreateSession godoc
// @Summary Create a session template
// @Tags sessions
// @Accept json
// @Produce json
// @Success 201 {object} models.SessionTemplate
// @Failure 400 {object} utils.ErrorResponse
// @Router /sessions [post]
func (s *SessionController) CreateSession(c *fiber.Ctx) error {
	var input sessionInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	tpl := models.SessionTemplate{Active: true}
	input.apply(&tpl)
	if err := db.DB.Create(&tpl).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to create session", err)
	}
	return c.Status(fiber.StatusCreated).JSON(tpl)
}

// UpdateSession godoc
// @Summary Replace a session template
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path int true "Session template ID"
// @Success 200 {object} models.SessionTemplate
// @Router /sessions/{id} [put]
func (s *SessionController) UpdateSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var input sessionInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	var tpl models.SessionTemplate
	if err := db.DB.First(&tpl, id).Error; err != nil {
		return lookupError(c, "Session template", err)
	}
	input.apply(&tpl)
	if err := db.DB.Save(&tpl).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}
	return c.JSON(tpl)
}

// DeleteSession godoc
// @Summary Delete a session template
// @Tags sessions
// @Param id path int true "Session template ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (s *SessionController) DeleteSession(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	result := db.DB.Delete(&models.SessionTemplate{}, id)
	if result.Error != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to delete session", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.RespondError(c, fiber.StatusNotFound, "Session template not found", nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type assignInput struct {
	SessionTemplateID uint     `json:"session_template_id" validate:"required"`
	Enabled           *bool    `json:"enabled"`
	Price             *float64 `json:"price" validate:"omitempty,gte=0"`
}

// AssignSession offers a session template as the calling professional,
// updating the existing assignment when there is one.
func (s *SessionController) AssignSession(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	pro, err := professionalFor(actor)
	if err != nil {
		return profileError(c, err)
	}

	var input assignInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	var tpl models.SessionTemplate
	if err := db.DB.Where("active = ?", true).First(&tpl, input.SessionTemplateID).Error; err != nil {
		return lookupError(c, "Session template", err)
	}

	var assignment models.ProfessionalSession
	err = db.DB.Where("professional_id = ? AND session_template_id = ?", pro.ID, tpl.ID).First(&assignment).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch assignment", err)
	}
	if created {
		assignment = models.ProfessionalSession{ProfessionalID: pro.ID, SessionTemplateID: tpl.ID, Enabled: true}
	}
	if !authz.Can(actor, authz.ActionCreate, &assignment) {
		return forbidden(c)
	}

	if input.Enabled != nil {
		assignment.Enabled = *input.Enabled
	}
	assignment.Price = input.Price
	if err := db.DB.Save(&assignment).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to save assignment", err)
	}

	assignment.SessionTemplate = &tpl
	assignment.EffectivePrice = assignment.PriceFor()
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(assignment)
}

type assignmentPatch struct {
	Enabled *bool    `json:"enabled"`
	Price   *float64 `json:"price" validate:"omitempty,gte=0"`
}

// UpdateAssignment toggles or reprices one of the caller's assignments.
func (s *SessionController) UpdateAssignment(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var input assignmentPatch
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	var assignment models.ProfessionalSession
	if err := db.DB.Preload("SessionTemplate").First(&assignment, id).Error; err != nil {
		return lookupError(c, "Assignment", err)
	}
	if !authz.Can(actor, authz.ActionUpdate, &assignment) {
		return forbidden(c)
	}

	updates := map[string]interface{}{}
	if input.Enabled != nil {
		updates["enabled"] = *input.Enabled
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if len(updates) == 0 {
		return badRequest(c, errors.New("no fields to update"))
	}
	if err := db.DB.Model(&assignment).Updates(updates).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to update assignment", err)
	}
	if err := db.DB.Preload("SessionTemplate").First(&assignment, id).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch assignment", err)
	}
	return c.JSON(assignment)
}
