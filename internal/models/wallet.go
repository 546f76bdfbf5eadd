package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet is the legacy instant-credit balance. Settlement no longer credits
// wallets (earnings aggregate into MonthlyEarning and are paid out manually);
// the tables stay migrated and readable for owners with historical balances.
type Wallet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64          `gorm:"not null;default:0" json:"balance"` // IDR
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}

type WalletTransaction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Amount    int64          `gorm:"not null" json:"amount"`             // positive = credit, negative = debit
	Type      string         `gorm:"size:30;not null;index" json:"type"` // EARNING, WITHDRAWAL
	Reference string         `gorm:"size:128" json:"reference"`          // e.g. transaction order_id
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
