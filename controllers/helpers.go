package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoProfile = errors.New("no professional profile for this account")

// paramID parses a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dst and runs tag validation.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("cannot parse JSON: %w", err)
	}
	return utils.Validate(dst)
}

func badRequest(c *fiber.Ctx, err error) error {
	return utils.RespondError(c, fiber.StatusBadRequest, "Invalid request", err)
}

func forbidden(c *fiber.Ctx) error {
	return utils.RespondError(c, fiber.StatusForbidden, "Forbidden", errors.New("you don't have permission to perform this action"))
}

// lookupError maps a failed First() to 404 or 500.
func lookupError(c *fiber.Ctx, what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.RespondError(c, fiber.StatusNotFound, what+" not found", nil)
	}
	return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch "+what, err)
}

// professionalFor loads the profile of the calling professional.
func professionalFor(actor authz.Actor) (*models.Professional, error) {
	if actor.Role != authz.RoleProfessional || actor.ProfessionalID == 0 {
		return nil, errNoProfile
	}
	var pro models.Professional
	if err := db.DB.Where("id = ? AND user_id = ?", actor.ProfessionalID, actor.UserID).First(&pro).Error; err != nil {
		return nil, err
	}
	return &pro, nil
}

// notify sends an email and logs instead of failing when delivery does not work.
func notify(m utils.Mailer, to, subject, body string) {
	if m == nil || to == "" {
		return
	}
	if err := m.Send(to, subject, body); err != nil {
		utils.Log().Warn("email delivery failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
	}
}
