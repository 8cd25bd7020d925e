package models

import (
	"time"

	"github.com/meinhoongagan/carebook/authz"
)

type User struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Name         string        `json:"name" gorm:"not null"`
	Email        string        `json:"email" gorm:"uniqueIndex;not null"`
	Password     string        `json:"-" gorm:"not null"`
	Phone        string        `json:"phone,omitempty"`
	Role         authz.Role    `json:"role" gorm:"type:varchar(20);not null;index"`
	Professional *Professional `json:"professional,omitempty" gorm:"foreignKey:UserID"`
	Appointments []Appointment `json:"appointments,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (u *User) AuthzResource() authz.Resource {
	return authz.Resource{Kind: authz.KindUser, OwnerID: u.ID}
}
