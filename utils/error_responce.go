package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// ErrorResponse is a struct for error response
type ErrorResponse struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondError writes an ErrorResponse. Server errors are logged with the
// request path; their details stay out of the response body.
func RespondError(c *fiber.Ctx, status int, message string, err error) error {
	resp := ErrorResponse{Message: message}

	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if status >= fiber.StatusInternalServerError {
		Log().Error(message,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	} else if err != nil {
		resp.Error = err.Error()
	}
	return c.Status(status).JSON(resp)
}

// StatusMessage is the generic message used for errors without a handler-specific one.
func StatusMessage(code int) string {
	if msg := fiberutils.StatusMessage(code); msg != "" {
		return msg
	}
	return "Internal Server Error"
}
