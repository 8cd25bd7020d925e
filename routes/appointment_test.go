package routes

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	*env
	pro          *models.Professional
	tpl          *models.SessionTemplate
	patient      *models.User
	patientToken string
}

func newBookingFixture(t *testing.T) *bookingFixture {
	e := newEnv(t)
	pro := testutil.CreateProfessional(t, e.conn, "doc@example.com", true, weekdays9to11)
	patient := testutil.CreateUser(t, e.conn, "pat@example.com", authz.RoleUser)
	return &bookingFixture{
		env:          e,
		pro:          pro,
		tpl:          testutil.CreateSession(t, e.conn, pro.ID, 30, 45.5),
		patient:      patient,
		patientToken: e.token(patient, 0),
	}
}

func (f *bookingFixture) book(token string, at time.Time) (int, map[string]interface{}) {
	return f.do("POST", "/appointments", token, map[string]interface{}{
		"professional_id":     f.pro.ID,
		"session_template_id": f.tpl.ID,
		"scheduled_at":        at.Format(time.RFC3339),
		"notes":               "first visit",
	})
}

func TestCreateAppointment(t *testing.T) {
	f := newBookingFixture(t)
	at := monday.Add(9 * time.Hour)

	status, body := f.book(f.patientToken, at)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, float64(30), body["duration_minutes"])
	assert.Equal(t, float64(f.patient.ID), body["user_id"])

	assert.Len(t, f.mailer.to("pat@example.com"), 1)
	assert.Len(t, f.mailer.to("doc@example.com"), 1)

	status, body = f.book(f.patientToken, at)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Slot no longer available", body["message"])

	_, resp := f.do("GET", fmt.Sprintf("/professionals/%d/availability?date=2030-01-07&days=1", f.pro.ID), "", nil)
	day := resp["days"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []string{"09:30", "10:00", "10:30"}, slotStarts(day))
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newBookingFixture(t)
	unverified := testutil.CreateProfessional(t, f.conn, "new@example.com", false, nil)
	notOffered := &models.SessionTemplate{Name: "group", DurationMinutes: 60, Price: 10, Active: true}
	require.NoError(t, f.conn.Create(notOffered).Error)

	future := monday.Add(9 * time.Hour).Format(time.RFC3339)
	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"missing fields", map[string]interface{}{}, fiber.StatusBadRequest},
		{"malformed instant", map[string]interface{}{"professional_id": f.pro.ID, "session_template_id": f.tpl.ID, "scheduled_at": "monday 9am"}, fiber.StatusBadRequest},
		{"past instant", map[string]interface{}{"professional_id": f.pro.ID, "session_template_id": f.tpl.ID, "scheduled_at": "2020-01-06T09:00:00Z"}, fiber.StatusBadRequest},
		{"unknown professional", map[string]interface{}{"professional_id": 9999, "session_template_id": f.tpl.ID, "scheduled_at": future}, fiber.StatusNotFound},
		{"unverified professional", map[string]interface{}{"professional_id": unverified.ID, "session_template_id": f.tpl.ID, "scheduled_at": future}, fiber.StatusForbidden},
		{"unknown template", map[string]interface{}{"professional_id": f.pro.ID, "session_template_id": 9999, "scheduled_at": future}, fiber.StatusNotFound},
		{"template not offered", map[string]interface{}{"professional_id": f.pro.ID, "session_template_id": notOffered.ID, "scheduled_at": future}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := f.do("POST", "/appointments", f.patientToken, tt.body)
			assert.Equal(t, tt.want, status)
		})
	}

	status, _ := f.book("", monday.Add(9*time.Hour))
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCreateAppointmentConcurrent(t *testing.T) {
	f := newBookingFixture(t)
	at := monday.Add(10 * time.Hour)

	const workers = 6
	statuses := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], _ = f.book(f.patientToken, at)
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case fiber.StatusCreated:
			created++
		case fiber.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestAppointmentLifecycle(t *testing.T) {
	f := newBookingFixture(t)
	proToken := f.token(f.pro.User, f.pro.ID)
	stranger := f.token(testutil.CreateUser(t, f.conn, "x@example.com", authz.RoleUser), 0)

	_, body := f.book(f.patientToken, monday.Add(9*time.Hour))
	path := fmt.Sprintf("/appointments/%v", body["ID"])

	status, _ := f.do("GET", path, stranger, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = f.do("GET", path, proToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = f.do("PATCH", path+"/status", f.patientToken, map[string]string{"status": "CONFIRMED"})
	assert.Equal(t, fiber.StatusForbidden, status, "patients may only cancel")

	status, body = f.do("PATCH", path+"/status", proToken, map[string]string{"status": "CONFIRMED"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "CONFIRMED", body["status"])

	status, _ = f.do("PATCH", path+"/status", proToken, map[string]string{"status": "PENDING"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = f.do("PATCH", path+"/status", f.patientToken, map[string]string{"status": "CANCELLED", "reason": "travel"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "travel", body["cancel_reason"])

	status, _ = f.do("PATCH", path+"/status", proToken, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, fiber.StatusBadRequest, status, "cancelled is terminal")

	status, _ = f.book(f.patientToken, monday.Add(9*time.Hour))
	assert.Equal(t, fiber.StatusCreated, status, "cancelled slot can be rebooked")
}

func TestListAppointments(t *testing.T) {
	f := newBookingFixture(t)
	other := testutil.CreateUser(t, f.conn, "other@example.com", authz.RoleUser)
	otherToken := f.token(other, 0)

	f.book(f.patientToken, monday.Add(9*time.Hour))
	f.book(f.patientToken, monday.Add(9*time.Hour+30*time.Minute))
	f.book(otherToken, monday.Add(10*time.Hour))

	_, body := f.do("GET", "/appointments", f.patientToken, nil)
	assert.Len(t, body["appointments"], 2)

	_, body = f.do("GET", "/appointments?limit=1", f.patientToken, nil)
	assert.Len(t, body["appointments"], 1)
	assert.Equal(t, float64(2), body["pagination"].(map[string]interface{})["total_pages"])

	_, body = f.do("GET", "/appointments", f.token(f.pro.User, f.pro.ID), nil)
	assert.Len(t, body["appointments"], 3)

	_, body = f.do("GET", "/appointments?status=cancelled", f.admin(), nil)
	assert.Len(t, body["appointments"], 0)
}

func TestDeleteAppointmentIsAdminOnly(t *testing.T) {
	f := newBookingFixture(t)
	_, body := f.book(f.patientToken, monday.Add(9*time.Hour))
	path := fmt.Sprintf("/appointments/%v", body["ID"])

	status, _ := f.do("DELETE", path, f.patientToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	admin := f.admin()
	status, _ = f.do("DELETE", path, admin, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = f.do("DELETE", path, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = f.book(f.patientToken, monday.Add(9*time.Hour))
	assert.Equal(t, fiber.StatusCreated, status, "deleted appointment frees the slot")
}
