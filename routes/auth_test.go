package routes

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginRefresh(t *testing.T) {
	e := newEnv(t)

	status, body := e.do("POST", "/auth/register", "", map[string]string{
		"name": "Dr Who", "email": "Doc@Example.com", "password": "supersecret", "role": "PROFESSIONAL",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "doc@example.com", body["email"])
	assert.Nil(t, body["password"])

	var pro models.Professional
	require.NoError(t, e.conn.Where("user_id = ?", body["id"]).First(&pro).Error)
	assert.False(t, pro.Verified)

	status, _ = e.do("POST", "/auth/register", "", map[string]string{
		"name": "Again", "email": "doc@example.com", "password": "supersecret",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = e.do("POST", "/auth/login", "", map[string]string{"email": "doc@example.com", "password": "supersecret"})
	require.Equal(t, fiber.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "PROFESSIONAL", user["role"])
	assert.Equal(t, float64(pro.ID), user["professional_id"])

	access := body["token"].(string)
	refresh := body["refreshToken"].(string)

	status, body = e.do("GET", "/auth/me", access, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "doc@example.com", body["email"])
	assert.NotNil(t, body["professional"])

	status, _ = e.do("GET", "/auth/me", refresh, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = e.do("POST", "/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, _ = e.do("POST", "/auth/refresh", "", map[string]string{"refreshToken": access})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"name": "Al", "password": "supersecret"}},
		{"bad email", map[string]string{"name": "Al", "email": "nope", "password": "supersecret"}},
		{"short password", map[string]string{"name": "Al", "email": "al@example.com", "password": "short"}},
		{"admin self-assignment", map[string]string{"name": "Al", "email": "al@example.com", "password": "supersecret", "role": "ADMIN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := e.do("POST", "/auth/register", "", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.NotEmpty(t, body["fields"])
		})
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	e := newEnv(t)
	e.do("POST", "/auth/register", "", map[string]string{"name": "Al", "email": "al@example.com", "password": "supersecret"})

	wrong := map[string]string{"email": "al@example.com", "password": "wrongpass"}
	for i := 0; i < 3; i++ {
		status, _ := e.do("POST", "/auth/login", "", wrong)
		assert.Equal(t, fiber.StatusUnauthorized, status)
	}

	status, _ := e.do("POST", "/auth/login", "", map[string]string{"email": "al@example.com", "password": "supersecret"})
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}
