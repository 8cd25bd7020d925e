package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/models"
	"github.com/meinhoongagan/carebook/utils"
)

type statusCount struct {
	Status models.AppointmentStatus
	Count  int64
}

// GetOverview returns platform-wide counters for the admin dashboard.
func GetOverview(c *fiber.Ctx) error {
	var statistics struct {
		TotalUsers            int64                              `json:"total_users"`
		VerifiedProfessionals int64                              `json:"verified_professionals"`
		PendingProfessionals  int64                              `json:"pending_professionals"`
		TotalAppointments     int64                              `json:"total_appointments"`
		AppointmentsByStatus  map[models.AppointmentStatus]int64 `json:"appointments_by_status"`
		TotalSessionTemplates int64                              `json:"total_session_templates"`
		ActiveSubscribers     int64                              `json:"active_subscribers"`
		RevenueByCurrency     map[string]float64                 `json:"revenue_by_currency"`
		LastUpdated           time.Time                          `json:"last_updated"`
	}

	counts := []struct {
		dst   *int64
		model interface{}
		where []interface{}
	}{
		{&statistics.TotalUsers, &models.User{}, nil},
		{&statistics.VerifiedProfessionals, &models.Professional{}, []interface{}{"verified = ?", true}},
		{&statistics.PendingProfessionals, &models.Professional{}, []interface{}{"verified = ?", false}},
		{&statistics.TotalAppointments, &models.Appointment{}, nil},
		{&statistics.TotalSessionTemplates, &models.SessionTemplate{}, nil},
		{&statistics.ActiveSubscribers, &models.NewsletterSubscription{}, []interface{}{"status = ?", models.SubscriptionActive}},
	}
	for _, cnt := range counts {
		q := db.DB.Model(cnt.model)
		if len(cnt.where) > 0 {
			q = q.Where(cnt.where[0], cnt.where[1:]...)
		}
		if err := q.Count(cnt.dst).Error; err != nil {
			return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to compute overview", err)
		}
	}

	var byStatus []statusCount
	if err := db.DB.Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to compute overview", err)
	}
	statistics.AppointmentsByStatus = make(map[models.AppointmentStatus]int64, len(byStatus))
	for _, s := range byStatus {
		statistics.AppointmentsByStatus[s.Status] = s.Count
	}

	// Revenue is kept in minor units; the response uses major units.
	var revenue []struct {
		Currency string
		Total    int64
	}
	if err := db.DB.Model(&models.PaymentIntent{}).
		Select("currency, COALESCE(SUM(amount), 0) AS total").
		Where("status = ?", models.PaymentSucceeded).
		Group("currency").
		Scan(&revenue).Error; err != nil {
		return utils.RespondError(c, fiber.StatusInternalServerError, "Failed to compute overview", err)
	}
	statistics.RevenueByCurrency = make(map[string]float64, len(revenue))
	for _, r := range revenue {
		statistics.RevenueByCurrency[r.Currency] = float64(r.Total) / 100
	}

	statistics.LastUpdated = time.Now()
	return c.JSON(statistics)
}
