package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/controllers"
)

// SetupNewsletterRoutes configures the public newsletter endpoints
func SetupNewsletterRoutes(app *fiber.App, deps Deps) {
	ctrl := &controllers.NewsletterController{Mailer: deps.Mailer}

	newsletter := app.Group("/newsletter")
	newsletter.Post("/subscribe", ctrl.Subscribe)
	newsletter.Get("/confirm", ctrl.Confirm)
	newsletter.Post("/unsubscribe", ctrl.Unsubscribe)
}
