package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/controllers"
	"github.com/meinhoongagan/carebook/middleware"
)

// SetupProfessionalRoutes configures professional directory, profile and availability routes
func SetupProfessionalRoutes(app *fiber.App, deps Deps) {
	ctrl := &controllers.ProfessionalController{Uploader: deps.Uploader}
	sessions := &controllers.SessionController{}
	avail := &controllers.AvailabilityController{
		Location:    deps.Location,
		DefaultDays: deps.AvailabilityDefaultDays,
		MaxDays:     deps.AvailabilityMaxDays,
	}
	protected := middleware.Protected(deps.JWTSecret)

	pro := app.Group("/professionals")

	// Routes on the caller's own profile come before the :id routes.
	pro.Patch("/me", protected, middleware.RequirePermission(authz.ActionUpdate, authz.KindProfessional), ctrl.UpdateMyProfile)
	pro.Put("/me/availability", protected, middleware.RequirePermission(authz.ActionUpdate, authz.KindAvailability), ctrl.UpdateMyAvailability)
	pro.Post("/me/avatar", protected, middleware.RequirePermission(authz.ActionUpdate, authz.KindProfessional), ctrl.UploadAvatar)
	pro.Post("/me/sessions", protected, middleware.RequirePermission(authz.ActionCreate, authz.KindProfessionalSession), sessions.AssignSession)
	pro.Patch("/me/sessions/:id", protected, middleware.RequirePermission(authz.ActionUpdate, authz.KindProfessionalSession), sessions.UpdateAssignment)

	pro.Get("/", ctrl.GetProfessionals)
	pro.Get("/:id", ctrl.GetProfessional)
	pro.Get("/:id/sessions", ctrl.GetProfessionalSessions)
	pro.Get("/:id/availability", avail.GetAvailability)

	pro.Put("/:id/availability", protected, ctrl.UpdateAvailability)
	pro.Patch("/:id/verify", protected, ctrl.VerifyProfessional)
}
