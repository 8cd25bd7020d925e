package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/utils"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := errorStatus(err, c.Response().StatusCode())

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if status >= fiber.StatusInternalServerError {
			utils.Log().Error("request", append(fields, zap.Error(err))...)
		} else {
			utils.Log().Info("request", fields...)
		}
		return err
	}
}

// errorStatus is the status the error handler will answer with for err, or
// current when the handler succeeded.
func errorStatus(err error, current int) int {
	if err == nil {
		return current
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
