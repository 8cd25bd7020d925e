package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/controllers"
	"github.com/meinhoongagan/carebook/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes
func SetupAppointmentRoutes(app *fiber.App, deps Deps) {
	ctrl := &controllers.AppointmentController{Mailer: deps.Mailer, Location: deps.Location}
	pay := &controllers.PaymentController{Gateway: deps.Payments, Currency: deps.Currency}

	appointment := app.Group("/appointments", middleware.Protected(deps.JWTSecret))
	appointment.Get("/", ctrl.GetAppointments)
	appointment.Get("/:id", ctrl.GetAppointment)
	appointment.Post("/", middleware.RequirePermission(authz.ActionCreate, authz.KindAppointment), ctrl.CreateAppointment)
	appointment.Patch("/:id/status", ctrl.UpdateAppointmentStatus)
	appointment.Post("/:id/payment-intent", pay.CreatePaymentIntent)
	appointment.Delete("/:id", middleware.RequirePermission(authz.ActionDelete, authz.KindAppointment), ctrl.DeleteAppointment)
}

// SetupPaymentRoutes configures payment lookups
func SetupPaymentRoutes(app *fiber.App, deps Deps) {
	pay := &controllers.PaymentController{Gateway: deps.Payments, Currency: deps.Currency}

	payment := app.Group("/payments", middleware.Protected(deps.JWTSecret))
	payment.Get("/:id", pay.GetPayment)
}
