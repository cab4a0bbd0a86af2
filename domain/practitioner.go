package domain

import (
	"time"

	"gorm.io/gorm"
)

type Practitioner struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FullName string `gorm:"column:full_name;not null" json:"full_name"`
	Email    string `gorm:"column:email;unique;not null" json:"email"`
	Password string `gorm:"column:password;not null" json:"-"`
	Role     string `gorm:"column:role;default:practitioner" json:"role"`
	// IsApproved is flipped by an admin; unapproved practitioners cannot log in.
	IsApproved bool `gorm:"column:is_approved;default:false" json:"is_approved"`
	// CommissionRate is the fraction of a recommendation's total credited to
	// the practitioner, e.g. 0.15.
	CommissionRate float64        `gorm:"column:commission_rate;type:numeric;default:0.1" json:"commission_rate"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Practitioner) TableName() string {
	return "practitioners"
}
