package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid()" json:"id"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Name        string     `json:"name"`
	Password    string     `gorm:"not null" json:"-"`
	Role        string     `gorm:"not null;default:user" json:"role"`
	IsBlocked   bool       `gorm:"default:false" json:"isBlocked"`
	LastLoginAt *time.Time `gorm:"default:null" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
