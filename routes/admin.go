package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/controllers/admin"
	"github.com/meinhoongagan/carebook/middleware"
)

// SetupAdminRoutes configures the admin dashboard
func SetupAdminRoutes(app *fiber.App, deps Deps) {
	group := app.Group("/admin",
		middleware.Protected(deps.JWTSecret),
		middleware.RequirePermission(authz.ActionRead, authz.KindDashboard),
	)
	group.Get("/overview", admin.GetOverview)
	group.Get("/users", admin.GetUsers)
	group.Get("/newsletter", admin.GetSubscriptions)
}
