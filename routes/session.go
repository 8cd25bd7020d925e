package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/controllers"
	"github.com/meinhoongagan/carebook/middleware"
)

// SetupSessionRoutes configures the session template catalogue
func SetupSessionRoutes(app *fiber.App, deps Deps) {
	sessions := &controllers.SessionController{}
	protected := middleware.Protected(deps.JWTSecret)

	session := app.Group("/sessions")
	session.Get("/", sessions.GetAllSessions)
	session.Get("/:id", sessions.GetSession)
	session.Post("/", protected, middleware.RequirePermission(authz.ActionCreate, authz.KindSessionTemplate), sessions.CreateSession)
	session.Put("/:id", protected, middleware.RequirePermission(authz.ActionUpdate, authz.KindSessionTemplate), sessions.UpdateSession)
	session.Delete("/:id", protected, middleware.RequirePermission(authz.ActionDelete, authz.KindSessionTemplate), sessions.DeleteSession)
}
