package service

import (
	"fmt"
	"sync"
	"time"

	"snapbooth/internal/models"
	"snapbooth/internal/repository"
)

// stubLedgerStore is an in-memory repository.LedgerStore. WithinTransaction
// holds a single mutex for the whole callback, which mirrors the row-lock
// serialization the real store gets from SELECT ... FOR UPDATE, and restores
// a snapshot on error to mimic rollback.
type stubLedgerStore struct {
	mu   sync.Mutex
	data *stubData

	saveTransactionErr error
	addEarningErr      error
	markSessionErr     error
}

type stubData struct {
	transactions map[string]*models.Transaction
	earnings     map[string]*models.MonthlyEarning // userID|month
	vouchers     map[uint]*models.Voucher
	deleted      map[uint]bool // retired voucher ids
	sessions     map[uint]string
	subscription map[uint]time.Time
}

func newStubLedgerStore() *stubLedgerStore {
	return &stubLedgerStore{data: &stubData{
		transactions: map[string]*models.Transaction{},
		earnings:     map[string]*models.MonthlyEarning{},
		vouchers:     map[uint]*models.Voucher{},
		deleted:      map[uint]bool{},
		sessions:     map[uint]string{},
		subscription: map[uint]time.Time{},
	}}
}

func earningKey(userID uint, month string) string {
	return fmt.Sprintf("%d|%s", userID, month)
}

func (d *stubData) clone() *stubData {
	c := &stubData{
		transactions: map[string]*models.Transaction{},
		earnings:     map[string]*models.MonthlyEarning{},
		vouchers:     map[uint]*models.Voucher{},
		deleted:      map[uint]bool{},
		sessions:     map[uint]string{},
		subscription: map[uint]time.Time{},
	}
	for k, v := range d.transactions {
		t := *v
		c.transactions[k] = &t
	}
	for k, v := range d.earnings {
		e := *v
		c.earnings[k] = &e
	}
	for k, v := range d.vouchers {
		vc := *v
		c.vouchers[k] = &vc
	}
	for k, v := range d.deleted {
		c.deleted[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.subscription {
		c.subscription[k] = v
	}
	return c
}

// unlocked operations, shared by the outer store and the tx view

func (s *stubLedgerStore) createTransaction(t *models.Transaction) error {
	if _, ok := s.data.transactions[t.OrderID]; ok {
		return fmt.Errorf("duplicate order id %s", t.OrderID)
	}
	cp := *t
	s.data.transactions[t.OrderID] = &cp
	return nil
}

func (s *stubLedgerStore) findTransaction(orderID string) (*models.Transaction, error) {
	t, ok := s.data.transactions[orderID]
	if !ok {
		return nil, repository.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *stubLedgerStore) saveTransaction(t *models.Transaction) error {
	if s.saveTransactionErr != nil {
		return s.saveTransactionErr
	}
	cp := *t
	s.data.transactions[t.OrderID] = &cp
	return nil
}

func (s *stubLedgerStore) listUnsettled() ([]models.Transaction, error) {
	var out []models.Transaction
	for _, t := range s.data.transactions {
		if t.Status == "paid" && t.Type == "photobooth_session" && t.GrossAmount == 0 {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *stubLedgerStore) addEarning(userID uint, month string, gross, fee, net int64) error {
	if s.addEarningErr != nil {
		return s.addEarningErr
	}
	key := earningKey(userID, month)
	e, ok := s.data.earnings[key]
	if !ok {
		e = &models.MonthlyEarning{UserID: userID, Month: month, PayoutStatus: "pending"}
		s.data.earnings[key] = e
	}
	e.TotalGross += gross
	e.TotalFee += fee
	e.TotalNet += net
	return nil
}

func (s *stubLedgerStore) getEarning(userID uint, month string) (*models.MonthlyEarning, error) {
	e, ok := s.data.earnings[earningKey(userID, month)]
	if !ok {
		return nil, repository.ErrEarningNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *stubLedgerStore) listEarnings(userID uint, limit int) ([]models.MonthlyEarning, error) {
	var out []models.MonthlyEarning
	for _, e := range s.data.earnings {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Month > out[i].Month {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubLedgerStore) findVoucher(id uint) (*models.Voucher, error) {
	if s.data.deleted[id] {
		return nil, repository.ErrVoucherNotFound
	}
	v, ok := s.data.vouchers[id]
	if !ok {
		return nil, repository.ErrVoucherNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *stubLedgerStore) saveVoucher(v *models.Voucher) error {
	cp := *v
	s.data.vouchers[v.ID] = &cp
	return nil
}

func (s *stubLedgerStore) retireVoucher(v *models.Voucher, usedAt time.Time) error {
	cp := *v
	cp.Quota = 0
	cp.IsActive = false
	cp.UsedAt = &usedAt
	s.data.vouchers[v.ID] = &cp
	s.data.deleted[v.ID] = true
	return nil
}

func (s *stubLedgerStore) markSession(sessionID uint, status string) error {
	if s.markSessionErr != nil {
		return s.markSessionErr
	}
	s.data.sessions[sessionID] = status
	return nil
}

func (s *stubLedgerStore) extendSubscription(userID uint, periodDays int, now time.Time) error {
	base := now
	if cur, ok := s.data.subscription[userID]; ok && cur.After(now) {
		base = cur
	}
	s.data.subscription[userID] = base.AddDate(0, 0, periodDays)
	return nil
}

// locked outer interface

func (s *stubLedgerStore) CreateTransaction(t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTransaction(t)
}

func (s *stubLedgerStore) FindTransactionByOrderID(orderID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findTransaction(orderID)
}

func (s *stubLedgerStore) LockTransactionByOrderID(orderID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findTransaction(orderID)
}

func (s *stubLedgerStore) SaveTransaction(t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTransaction(t)
}

func (s *stubLedgerStore) ListUnsettledPaidSessions() ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listUnsettled()
}

func (s *stubLedgerStore) AddMonthlyEarning(userID uint, month string, gross, fee, net int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEarning(userID, month, gross, fee, net)
}

func (s *stubLedgerStore) GetMonthlyEarning(userID uint, month string) (*models.MonthlyEarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getEarning(userID, month)
}

func (s *stubLedgerStore) ListMonthlyEarnings(userID uint, limit int) ([]models.MonthlyEarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listEarnings(userID, limit)
}

func (s *stubLedgerStore) FindVoucherByID(id uint) (*models.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findVoucher(id)
}

func (s *stubLedgerStore) SaveVoucher(v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveVoucher(v)
}

func (s *stubLedgerStore) RetireVoucher(v *models.Voucher, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retireVoucher(v, usedAt)
}

func (s *stubLedgerStore) MarkSessionStatus(sessionID uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markSession(sessionID, status)
}

func (s *stubLedgerStore) ExtendSubscription(userID uint, periodDays int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extendSubscription(userID, periodDays, now)
}

func (s *stubLedgerStore) WithinTransaction(fn func(repository.LedgerStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(&stubTx{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// stubTx runs inside WithinTransaction with the mutex already held.
type stubTx struct {
	s *stubLedgerStore
}

func (t *stubTx) CreateTransaction(trx *models.Transaction) error { return t.s.createTransaction(trx) }
func (t *stubTx) FindTransactionByOrderID(orderID string) (*models.Transaction, error) {
	return t.s.findTransaction(orderID)
}
func (t *stubTx) LockTransactionByOrderID(orderID string) (*models.Transaction, error) {
	return t.s.findTransaction(orderID)
}
func (t *stubTx) SaveTransaction(trx *models.Transaction) error { return t.s.saveTransaction(trx) }
func (t *stubTx) ListUnsettledPaidSessions() ([]models.Transaction, error) {
	return t.s.listUnsettled()
}
func (t *stubTx) AddMonthlyEarning(userID uint, month string, gross, fee, net int64) error {
	return t.s.addEarning(userID, month, gross, fee, net)
}
func (t *stubTx) GetMonthlyEarning(userID uint, month string) (*models.MonthlyEarning, error) {
	return t.s.getEarning(userID, month)
}
func (t *stubTx) ListMonthlyEarnings(userID uint, limit int) ([]models.MonthlyEarning, error) {
	return t.s.listEarnings(userID, limit)
}
func (t *stubTx) FindVoucherByID(id uint) (*models.Voucher, error) { return t.s.findVoucher(id) }
func (t *stubTx) SaveVoucher(v *models.Voucher) error              { return t.s.saveVoucher(v) }
func (t *stubTx) RetireVoucher(v *models.Voucher, usedAt time.Time) error {
	return t.s.retireVoucher(v, usedAt)
}
func (t *stubTx) MarkSessionStatus(sessionID uint, status string) error {
	return t.s.markSession(sessionID, status)
}
func (t *stubTx) ExtendSubscription(userID uint, periodDays int, now time.Time) error {
	return t.s.extendSubscription(userID, periodDays, now)
}
func (t *stubTx) WithinTransaction(fn func(repository.LedgerStore) error) error {
	return fn(t)
}
