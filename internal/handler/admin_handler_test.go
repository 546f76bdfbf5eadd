package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snapbooth/internal/models"
	"snapbooth/internal/repository"

	"github.com/gin-gonic/gin"
)

type stubAdminLedger struct {
	earningPaidErr error
	paidOutErr     error
	earningPaidID  uint
	paidOutOrder   string
}

func (s *stubAdminLedger) ListTransactions(limit, offset int) ([]models.Transaction, error) {
	return nil, nil
}

func (s *stubAdminLedger) MarkTransactionPaidOut(orderID string, at time.Time) error {
	s.paidOutOrder = orderID
	return s.paidOutErr
}

func (s *stubAdminLedger) MarkEarningPaid(id uint, at time.Time) error {
	s.earningPaidID = id
	return s.earningPaidErr
}

func adminRequest(t *testing.T, ledger *stubAdminLedger, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(ledger, nil, nil)
	r := gin.New()
	r.PATCH("/admin/earnings/:id/paid", h.MarkEarningPaid)
	r.PATCH("/admin/transactions/:orderId/paid-out", h.MarkPaidOut)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestMarkEarningPaid(t *testing.T) {
	ledger := &stubAdminLedger{}
	w := adminRequest(t, ledger, http.MethodPatch, "/admin/earnings/7/paid")
	if w.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", w.Code)
	}
	if ledger.earningPaidID != 7 {
		t.Errorf("earning id = %d, want 7", ledger.earningPaidID)
	}
}

func TestMarkEarningPaidUnknownID(t *testing.T) {
	ledger := &stubAdminLedger{earningPaidErr: repository.ErrEarningNotFound}
	w := adminRequest(t, ledger, http.MethodPatch, "/admin/earnings/999/paid")
	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404 for unknown earning", w.Code)
	}
}

func TestMarkPaidOutUnknownOrder(t *testing.T) {
	ledger := &stubAdminLedger{paidOutErr: repository.ErrTransactionNotFound}
	w := adminRequest(t, ledger, http.MethodPatch, "/admin/transactions/trx_missing/paid-out")
	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404 for unknown order", w.Code)
	}
	if ledger.paidOutOrder != "trx_missing" {
		t.Errorf("order = %q, want trx_missing", ledger.paidOutOrder)
	}
}
