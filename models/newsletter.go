package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionPending      SubscriptionStatus = "PENDING"
	SubscriptionActive       SubscriptionStatus = "ACTIVE"
	SubscriptionUnsubscribed SubscriptionStatus = "UNSUBSCRIBED"
)

type NewsletterSubscription struct {
	gorm.Model
	Email          string             `json:"email" gorm:"uniqueIndex;not null"`
	Token          string             `json:"-" gorm:"uniqueIndex;not null"`
	Status         SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ConfirmedAt    *time.Time         `json:"confirmed_at,omitempty"`
	UnsubscribedAt *time.Time         `json:"unsubscribed_at,omitempty"`
}
