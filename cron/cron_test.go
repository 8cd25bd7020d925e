package cron

import (
	"errors"
	"testing"
	"time"

	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMail struct{ to, subject string }

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to, subject})
	return nil
}

var now = time.Date(2030, time.January, 7, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*gorm.DB, func(at time.Time, status models.AppointmentStatus) *models.Appointment) {
	conn := testutil.NewDB(t)
	pro := testutil.CreateProfessional(t, conn, "doc@example.com", true, nil)
	patient := testutil.CreateUser(t, conn, "pat@example.com", authz.RoleUser)
	tpl := testutil.CreateSession(t, conn, pro.ID, 60, 80)

	return conn, func(at time.Time, status models.AppointmentStatus) *models.Appointment {
		appt := &models.Appointment{
			ProfessionalID:    pro.ID,
			UserID:            patient.ID,
			SessionTemplateID: tpl.ID,
			DurationMinutes:   tpl.DurationMinutes,
			ScheduledAt:       at.UTC(),
			Status:            status,
		}
		require.NoError(t, conn.Create(appt).Error)
		return appt
	}
}

func TestSendReminders(t *testing.T) {
	conn, create := seed(t)
	soon := create(now.Add(30*time.Minute), models.StatusConfirmed)
	create(now.Add(2*time.Hour), models.StatusConfirmed)
	create(now.Add(45*time.Minute), models.StatusPending)
	create(now.Add(-10*time.Minute), models.StatusConfirmed)

	mailer := &fakeMailer{}
	sent, err := SendReminders(conn, mailer, now)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "pat@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, "session-60m")

	var reloaded models.Appointment
	require.NoError(t, conn.First(&reloaded, soon.ID).Error)
	assert.NotNil(t, reloaded.ReminderSentAt)

	sent, err = SendReminders(conn, mailer, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, sent, "reminders go out once")
}

func TestSendRemindersRetriesAfterFailure(t *testing.T) {
	conn, create := seed(t)
	create(now.Add(30*time.Minute), models.StatusConfirmed)

	sent, err := SendReminders(conn, &fakeMailer{fail: true}, now)
	require.NoError(t, err)
	assert.Zero(t, sent)

	sent, err = SendReminders(conn, &fakeMailer{}, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestCompleteElapsed(t *testing.T) {
	conn, create := seed(t)
	done := create(now.Add(-2*time.Hour), models.StatusConfirmed)
	running := create(now.Add(-30*time.Minute), models.StatusConfirmed)
	pending := create(now.Add(-3*time.Hour), models.StatusPending)

	n, err := CompleteElapsed(conn, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	statusOf := func(id uint) models.AppointmentStatus {
		var a models.Appointment
		require.NoError(t, conn.First(&a, id).Error)
		return a.Status
	}
	assert.Equal(t, models.StatusCompleted, statusOf(done.ID))
	assert.Equal(t, models.StatusConfirmed, statusOf(running.ID))
	assert.Equal(t, models.StatusPending, statusOf(pending.ID))
}

func TestStartRejectsBadSpec(t *testing.T) {
	conn := testutil.NewDB(t)
	_, err := Start("not a spec", conn, &fakeMailer{}, zap.NewNop())
	assert.Error(t, err)

	c, err := Start("@every 1h", conn, &fakeMailer{}, zap.NewNop())
	require.NoError(t, err)
	c.Stop()
}
