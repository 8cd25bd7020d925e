package routes

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminOverview(t *testing.T) {
	f := newBookingFixture(t)
	testutil.CreateProfessional(t, f.conn, "new@example.com", false, nil)

	f.book(f.patientToken, monday.Add(9*time.Hour))
	_, second := f.book(f.patientToken, monday.Add(10*time.Hour))
	require.NoError(t, f.conn.Model(&models.Appointment{}).Where("id = ?", second["ID"]).Update("status", models.StatusConfirmed).Error)
	require.NoError(t, f.conn.Create(&models.PaymentIntent{
		AppointmentID: 1, UserID: f.patient.ID, Amount: 4550, Currency: "eur",
		Provider: "manual", Status: models.PaymentSucceeded,
	}).Error)

	status, _ := f.do("GET", "/admin/overview", f.patientToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := f.do("GET", "/admin/overview", f.admin(), nil)
	require.Equal(t, fiber.StatusOK, status, body)

	assert.Equal(t, float64(4), body["total_users"])
	assert.Equal(t, float64(1), body["verified_professionals"])
	assert.Equal(t, float64(1), body["pending_professionals"])
	assert.Equal(t, float64(2), body["total_appointments"])
	byStatus := body["appointments_by_status"].(map[string]interface{})
	assert.Equal(t, float64(1), byStatus["PENDING"])
	assert.Equal(t, float64(1), byStatus["CONFIRMED"])
	assert.Equal(t, 45.5, body["revenue_by_currency"].(map[string]interface{})["eur"])
}

func TestAdminUsers(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	testutil.CreateUser(t, e.conn, "a@example.com", authz.RoleUser)
	testutil.CreateProfessional(t, e.conn, "doc@example.com", true, nil)

	status, body := e.do("GET", "/admin/users?role=professional", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["users"], 1)

	_, body = e.do("GET", "/admin/users", admin, nil)
	assert.Len(t, body["users"], 3)
}
