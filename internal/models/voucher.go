package models

import (
	"time"

	"snapbooth/internal/domain"

	"gorm.io/gorm"
)

// Voucher is a quota-limited discount code owned by a tenant. An exhausted
// voucher is retired with used_at stamped and then soft-deleted, so it leaves
// every active query but the row survives for audit.
type Voucher struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:32;not null" json:"code"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Type      string         `gorm:"size:20;not null" json:"type"` // percent | fixed
	Value     int64          `gorm:"not null" json:"value"`        // percent (0-100) or IDR
	Quota     int            `gorm:"not null;default:0" json:"quota"`
	ExpiresAt *time.Time     `json:"expires_at"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	UsedAt    *time.Time     `json:"used_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

// IsRedeemable reports whether the voucher can still fund a checkout at t.
func (v *Voucher) IsRedeemable(t time.Time) bool {
	if !v.IsActive || v.Quota <= 0 {
		return false
	}
	if v.ExpiresAt != nil && v.ExpiresAt.Before(t) {
		return false
	}
	return true
}

// DiscountedPrice applies the voucher to a session price. The result never
// goes below zero; zero means the session is free and skips the gateway.
func (v *Voucher) DiscountedPrice(price int64) int64 {
	var total int64
	switch v.Type {
	case domain.VoucherTypePercent:
		total = price - price*v.Value/100
	case domain.VoucherTypeFixed:
		total = price - v.Value
	default:
		total = price
	}
	if total < 0 {
		return 0
	}
	return total
}
