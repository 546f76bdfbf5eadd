package service

import (
	"errors"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
)

const defaultHistoryMonths = 12

// EarningsService serves the owner dashboard. Pure reads; all writes go
// through the settlement engine.
type EarningsService struct {
	store repository.LedgerStore
	now   func() time.Time
}

func NewEarningsService(store repository.LedgerStore, now func() time.Time) *EarningsService {
	if now == nil {
		now = time.Now
	}
	return &EarningsService{store: store, now: now}
}

// CurrentMonthSummary returns the owner's earning row for the month in
// progress. An owner with no settled payments this month gets an explicit
// zero row rather than an error.
func (s *EarningsService) CurrentMonthSummary(userID uint) (*models.MonthlyEarning, error) {
	month := s.now().UTC().Format(domain.MonthKeyLayout)
	earning, err := s.store.GetMonthlyEarning(userID, month)
	if errors.Is(err, repository.ErrEarningNotFound) {
		return &models.MonthlyEarning{
			UserID:       userID,
			Month:        month,
			PayoutStatus: domain.PayoutStatusPending,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return earning, nil
}

// MonthlyHistory lists the owner's settled months, newest first.
func (s *EarningsService) MonthlyHistory(userID uint, limit int) ([]models.MonthlyEarning, error) {
	if limit <= 0 {
		limit = defaultHistoryMonths
	}
	return s.store.ListMonthlyEarnings(userID, limit)
}
