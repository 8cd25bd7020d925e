package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"gorm.io/gorm"
)

type NewsletterController struct {
	Mailer utils.Mailer
}

type subscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe registers a pending subscription and mails the confirmation
// link. Unsubscribed addresses start over as pending.
func (n *NewsletterController) Subscribe(c *fiber.Ctx) error {
	var input subscribeInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var sub models.NewsletterSubscription
	err := db.DB.Where("email = ?", email).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.NewsletterSubscription{Email: email, Token: utils.GenerateToken(), Status: models.SubscriptionPending}
		if err := db.DB.Create(&sub).Error; err != nil {
			return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to subscribe", err)
		}
	case err != nil:
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to subscribe", err)
	case sub.Status == models.SubscriptionActive:
		return c.JSON(fiber.Map{"message": "Already subscribed", "status": sub.Status})
	default:
		updates := map[string]interface{}{
			"status":          models.SubscriptionPending,
			"token":           utils.GenerateToken(),
			"unsubscribed_at": nil,
		}
		if err := db.DB.Model(&sub).Updates(updates).Error; err != nil {
			return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to subscribe", err)
		}
		sub.Token = updates["token"].(string)
		sub.Status = models.SubscriptionPending
	}

	link := fmt.Sprintf("%s/newsletter/confirm?token=%s", c.BaseURL(), sub.Token)
	notify(n.Mailer, sub.Email, "Confirm your subscription",
		fmt.Sprintf(`<p>Please confirm your newsletter subscription:</p><p><a href="%s">%s</a></p>`, link, link))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Check your inbox to confirm the subscription",
		"status":  sub.Status,
	})
}

// Confirm activates the subscription identified by ?token.
func (n *NewsletterController) Confirm(c *fiber.Ctx) error {
	sub, err := subscriptionByToken(c.Query("token"))
	if err != nil {
		return lookupError(c, "Subscription", err)
	}
	if sub.Status == models.SubscriptionUnsubscribed {
		return badRequest(c, errors.New("subscription was cancelled, subscribe again"))
	}

	now := time.Now().UTC()
	if err := db.DB.Model(sub).Updates(map[string]interface{}{
		"status":       models.SubscriptionActive,
		"confirmed_at": now,
	}).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to confirm subscription", err)
	}
	return c.JSON(fiber.Map{"message": "Subscription confirmed", "status": models.SubscriptionActive})
}

type unsubscribeInput struct {
	Token string `json:"token" validate:"required"`
}

// Unsubscribe cancels the subscription identified by its token.
func (n *NewsletterController) Unsubscribe(c *fiber.Ctx) error {
	var input unsubscribeInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}
	sub, err := subscriptionByToken(input.Token)
	if err != nil {
		return lookupError(c, "Subscription", err)
	}

	if err := db.DB.Model(sub).Updates(map[string]interface{}{
		"status":          models.SubscriptionUnsubscribed,
		"unsubscribed_at": time.Now().UTC(),
	}).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to unsubscribe", err)
	}
	return c.JSON(fiber.Map{"message": "Unsubscribed", "status": models.SubscriptionUnsubscribed})
}

func subscriptionByToken(token string) (*models.NewsletterSubscription, error) {
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var sub models.NewsletterSubscription
	if err := db.DB.Where("token = ?", token).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
