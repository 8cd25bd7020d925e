package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/ratelimit"
	"github.com/meinhoongagan/carebook/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(secret), func(c *fiber.Ctx) error {
		return c.JSON(Actor(c))
	})
	app.Get("/admin", Protected(secret), RequirePermission(authz.ActionRead, authz.KindDashboard), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Put("/availability", Protected(secret), RequirePermission(authz.ActionUpdate, authz.KindAvailability), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/pro", Protected(secret), RequireRole(authz.RoleProfessional), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func tokens(t *testing.T, sub utils.TokenSubject) *utils.TokenPair {
	pair, err := utils.GenerateTokenPair(secret, sub, time.Now())
	require.NoError(t, err)
	return pair
}

func call(t *testing.T, app *fiber.App, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := newApp()
	user := tokens(t, utils.TokenSubject{UserID: 1, Email: "u@x.io", Role: authz.RoleUser})

	assert.Equal(t, fiber.StatusOK, call(t, app, "GET", "/me", user.AccessToken))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", "garbage"))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", user.RefreshToken))

	bad := tokens(t, utils.TokenSubject{UserID: 1, Role: authz.Role("ROOT")})
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "GET", "/me", bad.AccessToken))
}

func TestPermissions(t *testing.T) {
	app := newApp()
	admin := tokens(t, utils.TokenSubject{UserID: 1, Role: authz.RoleAdmin})
	user := tokens(t, utils.TokenSubject{UserID: 2, Role: authz.RoleUser})
	pro := tokens(t, utils.TokenSubject{UserID: 3, Role: authz.RoleProfessional, ProfessionalID: 9})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"admin dashboard", "GET", "/admin", admin.AccessToken, fiber.StatusOK},
		{"user dashboard", "GET", "/admin", user.AccessToken, fiber.StatusForbidden},
		{"professional availability", "PUT", "/availability", pro.AccessToken, fiber.StatusOK},
		{"user availability", "PUT", "/availability", user.AccessToken, fiber.StatusForbidden},
		{"role match", "GET", "/pro", pro.AccessToken, fiber.StatusOK},
		{"role mismatch", "GET", "/pro", admin.AccessToken, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, app, tt.method, tt.path, tt.token))
		})
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Post("/login", RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/open", RateLimit(failingLimiter{}, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	assert.Equal(t, fiber.StatusOK, call(t, app, "POST", "/login", ""))
	assert.Equal(t, fiber.StatusOK, call(t, app, "POST", "/login", ""))
	assert.Equal(t, fiber.StatusTooManyRequests, call(t, app, "POST", "/login", ""))

	assert.Equal(t, fiber.StatusOK, call(t, app, "POST", "/open", ""))
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })
	app.Get("/err", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "gone") })

	assert.Equal(t, fiber.StatusTeapot, call(t, app, "GET", "/", ""))
	assert.Equal(t, fiber.StatusNotFound, call(t, app, "GET", "/err", ""))
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success keeps response status", nil, fiber.StatusCreated},
		{"fiber error", fiber.ErrNotFound, fiber.StatusNotFound},
		{"wrapped fiber error", fmt.Errorf("lookup: %w", fiber.ErrUnauthorized), fiber.StatusUnauthorized},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err, fiber.StatusCreated))
		})
	}
}
