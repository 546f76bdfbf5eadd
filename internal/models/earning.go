package models

import "time"

// MonthlyEarning is the per-owner, per-calendar-month running settlement
// total awaiting manual payout. At most one row per (user_id, month); totals
// only ever grow through the ON DUPLICATE KEY increment in the ledger
// repository. No soft delete: the unique index must stay authoritative.
type MonthlyEarning struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index:idx_earning_user_month,unique" json:"user_id"`
	Month        string     `gorm:"size:7;not null;index:idx_earning_user_month,unique" json:"month"` // YYYY-MM
	TotalGross   int64      `gorm:"not null;default:0" json:"total_gross"`
	TotalFee     int64      `gorm:"not null;default:0" json:"total_fee"`
	TotalNet     int64      `gorm:"not null;default:0" json:"total_net"`
	PayoutStatus string     `gorm:"size:20;not null;default:'pending';index" json:"payout_status"` // pending, paid
	PaidAt       *time.Time `json:"paid_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (MonthlyEarning) TableName() string {
	return "monthly_earnings"
}
