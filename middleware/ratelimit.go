package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/ratelimit"
	"github.com/meinhoongagan/carebook/utils"
	"go.uber.org/zap"
)

// RateLimit rejects requests once the client IP runs out of attempts in
// scope. Limiter failures let the request through.
func RateLimit(l ratelimit.Limiter, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		ok, err := l.Allow(c.UserContext(), scope+":"+ip)
		if err != nil {
			utils.Log().Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			return c.Next()
		}
		if !ok {
			utils.Log().Warn("rate limit exceeded", zap.String("scope", scope), zap.String("ip", ip))
			return c.Status(fiber.StatusTooManyRequests).JSON(utils.ErrorResponse{
				Message: "Too many attempts",
				Error:   "Rate limit exceeded. Try again later.",
			})
		}
		return c.Next()
	}
}
