package repository

import (
	"snapbooth/internal/models"

	"gorm.io/gorm"
)

// WalletRepository is read-only: the instant-credit model was replaced by
// monthly settlement, so nothing credits wallets anymore.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) ListTransactions(userID uint, limit int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	q := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}
