package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
)

// GetUsers lists accounts, optionally filtered by ?role.
func GetUsers(c *fiber.Ctx) error {
	page := utils.ParsePage(c)

	query := db.DB.Model(&models.User{})
	if role := strings.ToUpper(c.Query("role")); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	var users []models.User
	if err := query.Order("id").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": page.Meta(total),
	})
}

// GetSubscriptions lists newsletter subscriptions, optionally by ?status.
func GetSubscriptions(c *fiber.Ctx) error {
	page := utils.ParsePage(c)

	query := db.DB.Model(&models.NewsletterSubscription{})
	if status := strings.ToUpper(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch subscriptions", err)
	}

	var subs []models.NewsletterSubscription
	if err := query.Order("id DESC").Limit(page.Limit).Offset(page.Offset()).Find(&subs).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch subscriptions", err)
	}

	return c.JSON(fiber.Map{
		"subscriptions": subs,
		"pagination":    page.Meta(total),
	})
}
