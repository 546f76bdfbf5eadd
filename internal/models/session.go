package models

import (
	"time"

	"gorm.io/gorm"
)

// BoothSession is one guest capture session at a kiosk. The kiosk holds the
// session code; the public gallery page is keyed by the same code.
type BoothSession struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"uniqueIndex;size:32;not null" json:"code"`
	ProjectID     uint           `gorm:"not null;index" json:"project_id"`
	FrameID       *uint          `gorm:"index" json:"frame_id"`
	Status        string         `gorm:"size:20;not null;index" json:"status"` // created, awaiting_payment, active, completed, expired
	FinalImageURL string         `gorm:"size:512" json:"final_image_url"`
	ExpiresAt     *time.Time     `gorm:"index" json:"expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Project Project        `gorm:"foreignKey:ProjectID" json:"-"`
	Frame   *Frame         `gorm:"foreignKey:FrameID" json:"frame,omitempty"`
	Photos  []SessionPhoto `gorm:"foreignKey:SessionID" json:"photos,omitempty"`
}

func (BoothSession) TableName() string {
	return "booth_sessions"
}

type SessionPhoto struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SessionID    uint           `gorm:"not null;index" json:"session_id"`
	URL          string         `gorm:"size:512;not null" json:"url"`
	ThumbnailURL string         `gorm:"size:512" json:"thumbnail_url"`
	SortOrder    int            `gorm:"default:0" json:"sort_order"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Session BoothSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (SessionPhoto) TableName() string {
	return "session_photos"
}
