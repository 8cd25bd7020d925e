package models

import (
	"time"

	"github.com/meinhoongagan/carebook/authz"
	"gorm.io/gorm"
)

// Professional is the practitioner profile attached to a user with the
// PROFESSIONAL role. Only verified professionals are bookable.
type Professional struct {
	gorm.Model
	UserID             uint                  `json:"user_id" gorm:"uniqueIndex;not null"`
	User               *User                 `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title              string                `json:"title"`
	Specialty          string                `json:"specialty" gorm:"index"`
	Bio                string                `json:"bio"`
	Phone              string                `json:"phone"`
	Address            string                `json:"address"`
	City               string                `json:"city"`
	AvatarURL          string                `json:"avatar_url"`
	Verified           bool                  `json:"verified"`
	VerifiedAt         *time.Time            `json:"verified_at,omitempty"`
	WeeklyAvailability WeeklyAvailability    `json:"weekly_availability" gorm:"type:jsonb"`
	Sessions           []ProfessionalSession `json:"sessions,omitempty" gorm:"foreignKey:ProfessionalID"`
}

func (p *Professional) AuthzResource() authz.Resource {
	return authz.Resource{Kind: authz.KindProfessional, OwnerID: p.UserID, ProfessionalID: p.ID}
}

// AvailabilityResource is the resource guarding the professional's weekly settings.
func (p *Professional) AvailabilityResource() authz.Resource {
	return authz.Resource{Kind: authz.KindAvailability, OwnerID: p.UserID, ProfessionalID: p.ID}
}
