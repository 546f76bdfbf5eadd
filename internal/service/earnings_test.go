package service

import (
	"testing"

	"snapbooth/internal/domain"
)

func TestCurrentMonthSummaryDefaultsToZero(t *testing.T) {
	store := newStubLedgerStore()
	svc := NewEarningsService(store, fixedNow)

	earning, err := svc.CurrentMonthSummary(42)
	if err != nil {
		t.Fatal(err)
	}
	if earning.TotalGross != 0 || earning.TotalFee != 0 || earning.TotalNet != 0 {
		t.Errorf("totals = %d/%d/%d, want zeros", earning.TotalGross, earning.TotalFee, earning.TotalNet)
	}
	if earning.Month != "2026-08" {
		t.Errorf("month = %q, want 2026-08", earning.Month)
	}
	if earning.PayoutStatus != domain.PayoutStatusPending {
		t.Errorf("payout status = %q, want pending", earning.PayoutStatus)
	}
}

func TestCurrentMonthSummaryReturnsSettledRow(t *testing.T) {
	store := newStubLedgerStore()
	if err := store.AddMonthlyEarning(42, "2026-08", 50000, 5000, 45000); err != nil {
		t.Fatal(err)
	}
	svc := NewEarningsService(store, fixedNow)

	earning, err := svc.CurrentMonthSummary(42)
	if err != nil {
		t.Fatal(err)
	}
	if earning.TotalNet != 45000 {
		t.Errorf("net = %d, want 45000", earning.TotalNet)
	}
}

func TestMonthlyHistoryOrderAndLimit(t *testing.T) {
	store := newStubLedgerStore()
	for _, month := range []string{"2026-05", "2026-06", "2026-07", "2026-08"} {
		if err := store.AddMonthlyEarning(42, month, 10000, 1000, 9000); err != nil {
			t.Fatal(err)
		}
	}
	svc := NewEarningsService(store, fixedNow)

	history, err := svc.MonthlyHistory(42, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("len = %d, want 3", len(history))
	}
	if history[0].Month != "2026-08" || history[2].Month != "2026-06" {
		t.Errorf("months = %q..%q, want newest first", history[0].Month, history[2].Month)
	}

	all, err := svc.MonthlyHistory(42, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("default limit returned %d rows, want 4", len(all))
	}
}

func TestMonthlyHistoryIsolatedPerOwner(t *testing.T) {
	store := newStubLedgerStore()
	store.AddMonthlyEarning(42, "2026-08", 10000, 1000, 9000)
	store.AddMonthlyEarning(43, "2026-08", 99999, 9999, 90000)
	svc := NewEarningsService(store, fixedNow)

	history, err := svc.MonthlyHistory(42, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].TotalGross != 10000 {
		t.Errorf("history = %+v, want only user 42's row", history)
	}
}
