package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/controllers"
	"github.com/meinhoongagan/carebook/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, deps Deps) {
	ctrl := &controllers.AuthController{Secret: deps.JWTSecret}
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register", ctrl.Register)
	auth.Post("/login", middleware.RateLimit(deps.LoginLimiter, "login"), ctrl.Login)
	auth.Post("/refresh", ctrl.Refresh)

	// Protected routes
	auth.Get("/me", middleware.Protected(deps.JWTSecret), ctrl.Me)
}
