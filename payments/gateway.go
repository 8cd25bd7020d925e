// Package payments creates payment intents for booked appointments.
package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/meinhoongagan/carebook/models"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type IntentRequest struct {
	AppointmentID uint
	UserID        uint
	Amount        int64
	Currency      string
	Email         string
}

// Intent is the provider's view of a freshly created payment intent.
type Intent struct {
	ProviderRef  string
	ClientSecret string
	Status       models.PaymentStatus
}

type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.SetIdempotencyKey("appointment-" + strconv.FormatUint(uint64(req.AppointmentID), 10))
	params.AddMetadata("appointment_id", strconv.FormatUint(uint64(req.AppointmentID), 10))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(req.UserID), 10))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return &Intent{
		ProviderRef:  pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       mapStripeStatus(pi.Status),
	}, nil
}

func mapStripeStatus(s stripe.PaymentIntentStatus) models.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return models.PaymentSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return models.PaymentCancelled
	default:
		return models.PaymentPending
	}
}

// ManualGateway records intents settled outside the service, e.g. paid at
// the practice. It is used when no Stripe key is configured.
type ManualGateway struct{}

func (ManualGateway) Name() string { return "manual" }

func (ManualGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	if req.Amount < 0 {
		return nil, fmt.Errorf("manual: negative amount %d", req.Amount)
	}
	return &Intent{
		ProviderRef: "manual_" + uuid.NewString(),
		Status:      models.PaymentPending,
	}, nil
}

// MinorUnits converts a decimal price to the smallest currency unit.
func MinorUnits(price float64) int64 {
	if price < 0 {
		return int64(price*100 - 0.5)
	}
	return int64(price*100 + 0.5)
}
