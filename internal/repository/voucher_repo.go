package repository

import (
	"errors"
	"strings"

	"snapbooth/internal/models"

	"gorm.io/gorm"
)

type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) Create(v *models.Voucher) error {
	return r.db.Create(v).Error
}

func (r *VoucherRepository) GetByID(id uint) (*models.Voucher, error) {
	var v models.Voucher
	err := r.db.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByCode matches case-insensitively; kiosk operators type these by hand.
func (r *VoucherRepository) GetByCode(code string) (*models.Voucher, error) {
	var v models.Voucher
	err := r.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VoucherRepository) ListByOwner(ownerID uint) ([]models.Voucher, error) {
	var list []models.Voucher
	err := r.db.Where("user_id = ?", ownerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *VoucherRepository) Update(v *models.Voucher) error {
	return r.db.Save(v).Error
}

func (r *VoucherRepository) Delete(v *models.Voucher) error {
	return r.db.Delete(v).Error
}
