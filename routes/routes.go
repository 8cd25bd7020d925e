package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/payments"
	"github.com/meinhoongagan/carebook/ratelimit"
	"github.com/meinhoongagan/carebook/utils"
)

// Deps carries everything the handlers need beyond the database.
type Deps struct {
	JWTSecret               string
	Location                *time.Location
	AvailabilityDefaultDays int
	AvailabilityMaxDays     int
	Currency                string

	LoginLimiter ratelimit.Limiter
	Payments     payments.Gateway
	Mailer       utils.Mailer
	Uploader     utils.Uploader
}

// Setup registers every route group on app.
func Setup(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, deps)
	SetupProfessionalRoutes(app, deps)
	SetupSessionRoutes(app, deps)
	SetupAppointmentRoutes(app, deps)
	SetupPaymentRoutes(app, deps)
	SetupNewsletterRoutes(app, deps)
	SetupAdminRoutes(app, deps)
}
