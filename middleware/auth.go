package middleware

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/utils"
	"go.uber.org/zap"
)

const actorKey = "actor"

// Protected validates the bearer access token and stores the caller in
// Locals as "userID", "role" and "actor".
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "Invalid token claims")
			}

			if typ, _ := claims["type"].(string); typ != utils.TokenTypeAccess {
				return unauthorized(c, "Access token required")
			}

			userID, err := extractID(claims, "id")
			if err != nil || userID == 0 {
				utils.Log().Debug("rejecting token", zap.Error(err))
				return unauthorized(c, "Invalid user ID in token")
			}

			role, err := extractRole(claims)
			if err != nil {
				utils.Log().Debug("rejecting token", zap.Error(err))
				return unauthorized(c, "Invalid role in token")
			}

			// Optional; only professionals carry one.
			professionalID, _ := extractID(claims, "professional_id")

			c.Locals("userID", userID)
			c.Locals("role", role)
			c.Locals(actorKey, authz.Actor{UserID: userID, Role: role, ProfessionalID: professionalID})

			return c.Next()
		},
	})
}

// Actor returns the authenticated caller, or the zero Actor on public routes.
func Actor(c *fiber.Ctx) authz.Actor {
	a, _ := c.Locals(actorKey).(authz.Actor)
	return a
}

// extractID handles multiple potential formats of a numeric ID claim
func extractID(claims jwt.MapClaims, key string) (uint, error) {
	idVal := claims[key]
	if idVal == nil {
		return 0, fmt.Errorf("no %s found in claims", key)
	}

	switch v := idVal.(type) {
	case float64:
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse %s string: %v", key, err)
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported %s type: %T", key, v)
	}
}

func extractRole(claims jwt.MapClaims) (authz.Role, error) {
	s, ok := claims["role"].(string)
	if !ok {
		return "", fmt.Errorf("no role found in claims")
	}
	role := authz.Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Unauthorized",
		Error:   msg,
	})
}

// jwtError handles JWT errors
func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Unauthorized",
		Error:   "Invalid or expired token",
	})
}
