package models

import (
	"github.com/meinhoongagan/carebook/authz"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// PaymentIntent records the gateway intent created for an appointment.
// Amount is in minor currency units.
type PaymentIntent struct {
	gorm.Model
	AppointmentID uint              `json:"appointment_id" gorm:"not null;index"`
	Appointment   *Appointment      `json:"appointment,omitempty" gorm:"foreignKey:AppointmentID"`
	UserID        uint              `json:"user_id" gorm:"not null;index"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency" gorm:"type:varchar(3)"`
	Provider      string            `json:"provider"`
	ProviderRef   string            `json:"provider_ref" gorm:"index"`
	ClientSecret  string            `json:"client_secret,omitempty"`
	Status        PaymentStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty"`
}

func (p *PaymentIntent) AuthzResource() authz.Resource {
	return authz.Resource{Kind: authz.KindPayment, OwnerID: p.UserID}
}
