package models

import (
	"github.com/meinhoongagan/carebook/authz"
	"gorm.io/gorm"
)

// SessionTemplate is a bookable kind of consultation, managed by admins and
// offered by professionals through a ProfessionalSession.
type SessionTemplate struct {
	gorm.Model
	Name            string  `json:"name" gorm:"not null"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes" gorm:"not null"`
	Price           float64 `json:"price"`
	Active          bool    `json:"active"`
}

// ProfessionalSession assigns a template to a professional. Price, when set,
// overrides the template price.
type ProfessionalSession struct {
	gorm.Model
	ProfessionalID    uint             `json:"professional_id" gorm:"not null;uniqueIndex:idx_professional_session"`
	SessionTemplateID uint             `json:"session_template_id" gorm:"not null;uniqueIndex:idx_professional_session"`
	SessionTemplate   *SessionTemplate `json:"session_template,omitempty" gorm:"foreignKey:SessionTemplateID"`
	Enabled           bool             `json:"enabled"`
	Price             *float64         `json:"price,omitempty"`
	EffectivePrice    float64          `json:"effective_price" gorm:"-"`
}

func (s *ProfessionalSession) AfterFind(tx *gorm.DB) (err error) {
	s.EffectivePrice = s.PriceFor()
	return
}

// PriceFor returns the price a patient pays for this assignment.
func (s *ProfessionalSession) PriceFor() float64 {
	if s.Price != nil {
		return *s.Price
	}
	if s.SessionTemplate != nil {
		return s.SessionTemplate.Price
	}
	return 0
}

func (s *ProfessionalSession) AuthzResource() authz.Resource {
	return authz.Resource{Kind: authz.KindProfessionalSession, ProfessionalID: s.ProfessionalID}
}
