package service

import (
	"fmt"
	"log"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
)

// SettlementService splits a gross payment into platform fee and owner share
// and folds the result into the owner's monthly earning row. The clock is
// injected so the month attribution is deterministic under test.
type SettlementService struct {
	store repository.LedgerStore
	fees  FeePolicy
	now   func() time.Time
}

func NewSettlementService(store repository.LedgerStore, fees FeePolicy, now func() time.Time) *SettlementService {
	if now == nil {
		now = time.Now
	}
	return &SettlementService{store: store, fees: fees, now: now}
}

// Record settles a single paid transaction inside the caller's transaction
// scope. It stamps the fee breakdown on the transaction row and upserts the
// monthly earning for the settlement month (the month Record runs in, not the
// month the payment was initiated).
func (s *SettlementService) Record(store repository.LedgerStore, trx *models.Transaction, gross int64) error {
	if gross <= 0 {
		return fmt.Errorf("settlement: non-positive gross %d for order %s", gross, trx.OrderID)
	}

	fee := s.fees.Fee(gross)
	if fee < 0 {
		fee = 0
	}
	if fee > gross {
		fee = gross
	}

	trx.GrossAmount = gross
	trx.PlatformFee = fee
	trx.OwnerAmount = gross - fee
	if err := store.SaveTransaction(trx); err != nil {
		return fmt.Errorf("settlement: save transaction %s: %w", trx.OrderID, err)
	}

	month := s.now().UTC().Format(domain.MonthKeyLayout)
	if err := store.AddMonthlyEarning(trx.UserID, month, gross, fee, gross-fee); err != nil {
		return fmt.Errorf("settlement: accumulate earning for user %d month %s: %w", trx.UserID, month, err)
	}
	return nil
}

// Backfill settles paid photobooth transactions that carry no fee breakdown,
// typically after the fee policy was introduced or a webhook fault left a
// paid row unsettled. Each transaction is settled in its own database
// transaction so one bad row does not block the rest. Returns the number of
// rows settled.
func (s *SettlementService) Backfill() (int, error) {
	pending, err := s.store.ListUnsettledPaidSessions()
	if err != nil {
		return 0, fmt.Errorf("settlement: list unsettled: %w", err)
	}

	settled := 0
	for i := range pending {
		trx := pending[i]
		done := false
		err := s.store.WithinTransaction(func(tx repository.LedgerStore) error {
			locked, err := tx.LockTransactionByOrderID(trx.OrderID)
			if err != nil {
				return err
			}
			// Re-check under the row lock in case a concurrent webhook
			// settled it between the listing and now.
			if locked.GrossAmount > 0 || !locked.IsPaid() {
				return nil
			}
			if err := s.Record(tx, locked, locked.Amount); err != nil {
				return err
			}
			done = true
			return nil
		})
		if err != nil {
			log.Printf("[Settlement] backfill skipped order_id=%s: %v", trx.OrderID, err)
			continue
		}
		if done {
			settled++
		}
	}
	return settled, nil
}
