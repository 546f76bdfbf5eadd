package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription tracks the owner's platform plan. A paid subscription-type
// transaction extends ExpiresAt by one billing period.
type Subscription struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // active, expired
	ExpiresAt time.Time      `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
