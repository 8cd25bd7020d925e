package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/payments"
	"github.com/meinhoongagan/carebook/ratelimit"
	"github.com/meinhoongagan/carebook/testutil"
	"github.com/meinhoongagan/carebook/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "routes-test-secret"

type mail struct{ To, Subject, Body string }

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail{to, subject, body})
	return nil
}

func (m *recordingMailer) to(addr string) []mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mail
	for _, s := range m.sent {
		if s.To == addr {
			out = append(out, s)
		}
	}
	return out
}

type stubUploader struct{ url string }

func (u stubUploader) Upload(context.Context, interface{}, string, string) (string, error) {
	return u.url, nil
}

type env struct {
	t      *testing.T
	app    *fiber.App
	conn   *gorm.DB
	mailer *recordingMailer
}

func newEnv(t *testing.T) *env {
	conn := testutil.NewDB(t)
	mailer := &recordingMailer{}
	app := fiber.New()
	Setup(app, Deps{
		JWTSecret:               testSecret,
		Location:                time.UTC,
		AvailabilityDefaultDays: 7,
		AvailabilityMaxDays:     31,
		Currency:                "eur",
		LoginLimiter:            ratelimit.NewMemoryLimiter(3, time.Minute),
		Payments:                payments.ManualGateway{},
		Mailer:                  mailer,
		Uploader:                stubUploader{url: "https://cdn.example.com/avatar.png"},
	})
	return &env{t: t, app: app, conn: conn, mailer: mailer}
}

// token issues an access token for a user as login would.
func (e *env) token(u *models.User, professionalID uint) string {
	pair, err := utils.GenerateTokenPair(testSecret, utils.TokenSubject{
		UserID: u.ID, Email: u.Email, Role: u.Role, ProfessionalID: professionalID,
	}, time.Now())
	require.NoError(e.t, err)
	return pair.AccessToken
}

func (e *env) admin() string {
	return e.token(testutil.CreateUser(e.t, e.conn, "admin@example.com", authz.RoleAdmin), 0)
}

func (e *env) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(e.t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 && raw[0] == '[' {
		var list []interface{}
		require.NoError(e.t, json.Unmarshal(raw, &list))
		out["items"] = list
	}
	return resp.StatusCode, out
}

func (e *env) raw(req *http.Request) *http.Response {
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	return resp
}

var weekdays9to11 = models.WeeklyAvailability{
	"monday": {Available: true, Intervals: []models.TimeRange{{Start: "09:00", End: "11:00"}}},
}

// 2030-01-07 is a Monday.
var monday = time.Date(2030, time.January, 7, 0, 0, 0, 0, time.UTC)
