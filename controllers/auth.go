package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/middleware"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	Secret string
}

type registerInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"max=30"`
	Role     string `json:"role" validate:"omitempty,oneof=USER PROFESSIONAL"`
}

// Register handles user registration. Professionals start unverified.
func (a *AuthController) Register(c *fiber.Ctx) error {
	var input registerInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	role := authz.RoleUser
	if input.Role != "" {
		role = authz.Role(input.Role)
	}

	var existing int64
	if err := db.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&existing).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to check existing user", err)
	}
	if existing > 0 {
		return utils.RespondError(c, fiber.StatusConflict, "User with this email already exists", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
		Phone:    input.Phone,
		Role:     role,
	}
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if role != authz.RoleProfessional {
			return nil
		}
		user.Professional = &models.Professional{UserID: user.ID, Phone: input.Phone}
		return tx.Create(user.Professional).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.RespondError(c, fiber.StatusConflict, "User with this email already exists", nil)
	}
	if err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user authentication
func (a *AuthController) Login(c *fiber.Ctx) error {
	var input loginInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	var user models.User
	if err := db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error; err != nil {
		return utils.RespondError(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return utils.RespondError(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	return a.issue(c, &user)
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh generates a new token pair using a refresh token
func (a *AuthController) Refresh(c *fiber.Ctx) error {
	var input refreshInput
	if err := parseBody(c, &input); err != nil {
		return badRequest(c, err)
	}

	userID, err := utils.ParseRefreshToken(a.Secret, input.RefreshToken)
	if err != nil {
		return utils.RespondError(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RespondError(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
		}
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch user", err)
	}
	return a.issue(c, &user)
}

func (a *AuthController) issue(c *fiber.Ctx, user *models.User) error {
	sub := utils.TokenSubject{UserID: user.ID, Email: user.Email, Role: user.Role}
	if user.Role == authz.RoleProfessional {
		var pro models.Professional
		err := db.DB.Select("id").Where("user_id = ?", user.ID).First(&pro).Error
		switch {
		case err == nil:
			sub.ProfessionalID = pro.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to fetch professional profile", err)
		}
	}

	pair, err := utils.GenerateTokenPair(a.Secret, sub, time.Now())
	if err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}

	return c.JSON(fiber.Map{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user": fiber.Map{
			"id":              user.ID,
			"name":            user.Name,
			"email":           user.Email,
			"role":            user.Role,
			"professional_id": sub.ProfessionalID,
		},
	})
}

// Me returns the current user's profile
func (a *AuthController) Me(c *fiber.Ctx) error {
	actor := middleware.Actor(c)

	var user models.User
	if err := db.DB.Preload("Professional").First(&user, actor.UserID).Error; err != nil {
		return lookupError(c, "User", err)
	}
	if !authz.Can(actor, authz.ActionRead, &user) {
		return forbidden(c)
	}
	return c.JSON(user)
}
