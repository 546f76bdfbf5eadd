package repository

import (
	"errors"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrVoucherNotFound     = errors.New("voucher not found")
	ErrEarningNotFound     = errors.New("monthly earning not found")
)

// LedgerStore is the slice of persistence the settlement pipeline mutates.
// WithinTransaction must be atomic: either every mutation made through the
// yielded store persists, or none do. LockTransactionByOrderID must hold a
// row lock until the wrapping transaction ends, so two concurrent webhook
// deliveries for the same order serialize on the idempotency check.
type LedgerStore interface {
	CreateTransaction(t *models.Transaction) error
	FindTransactionByOrderID(orderID string) (*models.Transaction, error)
	LockTransactionByOrderID(orderID string) (*models.Transaction, error)
	SaveTransaction(t *models.Transaction) error
	ListUnsettledPaidSessions() ([]models.Transaction, error)

	AddMonthlyEarning(userID uint, month string, gross, fee, net int64) error
	GetMonthlyEarning(userID uint, month string) (*models.MonthlyEarning, error)
	ListMonthlyEarnings(userID uint, limit int) ([]models.MonthlyEarning, error)

	FindVoucherByID(id uint) (*models.Voucher, error)
	SaveVoucher(v *models.Voucher) error
	RetireVoucher(v *models.Voucher, usedAt time.Time) error

	MarkSessionStatus(sessionID uint, status string) error
	ExtendSubscription(userID uint, periodDays int, now time.Time) error

	WithinTransaction(fn func(LedgerStore) error) error
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) CreateTransaction(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *LedgerRepository) FindTransactionByOrderID(orderID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("order_id = ?", orderID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LockTransactionByOrderID reads the row FOR UPDATE. Only meaningful inside
// WithinTransaction; the lock is what closes the check-then-act window
// between the "already paid" guard and the settlement writes.
func (r *LedgerRepository) LockTransactionByOrderID(orderID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *LedgerRepository) SaveTransaction(t *models.Transaction) error {
	return r.db.Save(t).Error
}

// ListUnsettledPaidSessions returns paid session transactions that never went
// through the settlement engine (historical rows from before fee splitting).
func (r *LedgerRepository) ListUnsettledPaidSessions() ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.
		Where("status = ? AND type = ? AND gross_amount = 0",
			domain.TransactionStatusPaid, domain.TransactionTypeSession).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// AddMonthlyEarning upserts the (user, month) row with an atomic increment.
// ON DUPLICATE KEY makes concurrent settlements for the same month additive
// instead of last-write-wins.
func (r *LedgerRepository) AddMonthlyEarning(userID uint, month string, gross, fee, net int64) error {
	row := models.MonthlyEarning{
		UserID:       userID,
		Month:        month,
		TotalGross:   gross,
		TotalFee:     fee,
		TotalNet:     net,
		PayoutStatus: domain.PayoutStatusPending,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_gross": gorm.Expr("total_gross + ?", gross),
			"total_fee":   gorm.Expr("total_fee + ?", fee),
			"total_net":   gorm.Expr("total_net + ?", net),
		}),
	}).Create(&row).Error
}

func (r *LedgerRepository) GetMonthlyEarning(userID uint, month string) (*models.MonthlyEarning, error) {
	var e models.MonthlyEarning
	err := r.db.Where("user_id = ? AND month = ?", userID, month).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEarningNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *LedgerRepository) ListMonthlyEarnings(userID uint, limit int) ([]models.MonthlyEarning, error) {
	var list []models.MonthlyEarning
	q := r.db.Where("user_id = ?", userID).Order("month DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *LedgerRepository) FindVoucherByID(id uint) (*models.Voucher, error) {
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

func (r *LedgerRepository) SaveVoucher(v *models.Voucher) error {
	return r.db.Save(v).Error
}

// RetireVoucher stamps used_at and soft-deletes the exhausted voucher, so it
// disappears from every active query while the row stays for audit.
func (r *LedgerRepository) RetireVoucher(v *models.Voucher, usedAt time.Time) error {
	v.Quota = 0
	v.IsActive = false
	v.UsedAt = &usedAt
	if err := r.db.Save(v).Error; err != nil {
		return err
	}
	return r.db.Delete(v).Error
}

func (r *LedgerRepository) MarkSessionStatus(sessionID uint, status string) error {
	return r.db.Model(&models.BoothSession{}).
		Where("id = ?", sessionID).
		Update("status", status).Error
}

// ExtendSubscription pushes the owner's plan expiry out by one billing
// period, from the current expiry when still active or from now otherwise.
func (r *LedgerRepository) ExtendSubscription(userID uint, periodDays int, now time.Time) error {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.Subscription{
			UserID:    userID,
			Status:    domain.SubscriptionStatusActive,
			ExpiresAt: now.AddDate(0, 0, periodDays),
		}
		return r.db.Create(&sub).Error
	}
	if err != nil {
		return err
	}
	base := now
	if sub.ExpiresAt.After(now) {
		base = sub.ExpiresAt
	}
	sub.Status = domain.SubscriptionStatusActive
	sub.ExpiresAt = base.AddDate(0, 0, periodDays)
	return r.db.Save(&sub).Error
}

func (r *LedgerRepository) WithinTransaction(fn func(LedgerStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepository{db: tx})
	})
}

// --- admin-side queries, not part of the LedgerStore contract ---

func (r *LedgerRepository) ListTransactions(limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	q := r.db.Preload("Session").Order("created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *LedgerRepository) ListTransactionsByUser(userID uint, limit int) ([]models.Transaction, error) {
	var list []models.Transaction
	q := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}

// MarkTransactionPaidOut stamps paid_out_at, the only mutation allowed on a
// terminal transaction.
func (r *LedgerRepository) MarkTransactionPaidOut(orderID string, at time.Time) error {
	res := r.db.Model(&models.Transaction{}).
		Where("order_id = ? AND status = ?", orderID, domain.TransactionStatusPaid).
		Update("paid_out_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// MarkEarningPaid records the manual payout of one monthly aggregate.
func (r *LedgerRepository) MarkEarningPaid(id uint, at time.Time) error {
	res := r.db.Model(&models.MonthlyEarning{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payout_status": domain.PayoutStatusPaid,
			"paid_at":       at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEarningNotFound
	}
	return nil
}
