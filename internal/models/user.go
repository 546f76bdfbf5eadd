package models

import (
	"time"

	"snapbooth/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // OWNER | ADMIN
	FCMToken     string         `gorm:"size:512" json:"-"`                  // For push notifications
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
	Projects     []Project     `gorm:"foreignKey:OwnerID" json:"projects,omitempty"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }
