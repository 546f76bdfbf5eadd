package models

import (
	"time"

	"snapbooth/internal/domain"

	"gorm.io/gorm"
)

// Transaction is the payable unit of work: one booth session or one
// subscription purchase. OrderID is the gateway-facing order id. Once the
// status reaches a terminal state (paid/failed) the row is immutable, except
// for the administrative paid_out_at marking.
type Transaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     string         `gorm:"uniqueIndex;size:64;not null" json:"order_id"`
	SessionID   *uint          `gorm:"index" json:"session_id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`        // project owner receiving the earnings
	Amount      int64          `gorm:"not null" json:"amount"`               // IDR charged to the guest
	Status      string         `gorm:"size:20;not null;index" json:"status"` // pending, paid, failed, free
	Type        string         `gorm:"size:30;not null;index" json:"type"`   // photobooth_session, subscription
	GrossAmount int64          `json:"gross_amount"`
	PlatformFee int64          `json:"platform_fee"`
	OwnerAmount int64          `json:"owner_amount"`
	PaidOutAt   *time.Time     `json:"paid_out_at"`
	PaymentType string         `gorm:"size:50" json:"payment_type"`
	RawPayload  string         `gorm:"type:text" json:"-"` // gateway notification, verbatim
	VoucherID   *uint          `gorm:"index" json:"voucher_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Session *BoothSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	User    User          `gorm:"foreignKey:UserID" json:"-"`
	Voucher *Voucher      `gorm:"foreignKey:VoucherID" json:"voucher,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) IsPaid() bool { return t.Status == domain.TransactionStatusPaid }

// IsTerminal reports whether the status may no longer change.
func (t *Transaction) IsTerminal() bool {
	return t.Status == domain.TransactionStatusPaid || t.Status == domain.TransactionStatusFailed
}
