package models

import (
	"time"

	"gorm.io/gorm"
)

// Project is a deployed photobooth (one per booth/event). Kiosks authenticate
// to a project with its booth key, never with an owner account.
type Project struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerID      uint           `gorm:"not null;index" json:"owner_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Slug         string         `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	BoothKey     string         `gorm:"size:64;not null" json:"-"`
	SessionPrice int64          `gorm:"not null" json:"session_price"` // IDR per session
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Owner  User    `gorm:"foreignKey:OwnerID" json:"-"`
	Frames []Frame `gorm:"foreignKey:ProjectID" json:"frames,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

type Frame struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProjectID    uint           `gorm:"not null;index" json:"project_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	OverlayURL   string         `gorm:"size:512;not null" json:"overlay_url"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	SlotCount    int            `gorm:"default:4" json:"slot_count"` // photos per strip
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Frame) TableName() string {
	return "frames"
}
