package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/pkg/payment"
)

const testServerKey = "test-server-key"

var testNow = time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
	failed []string
}

func (n *recordingNotifier) SessionPaid(trx *models.Transaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, trx.OrderID)
}

func (n *recordingNotifier) SessionFailed(trx *models.Transaction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, trx.OrderID)
}

type reconcileFixture struct {
	store      *stubLedgerStore
	gateway    *payment.StubGateway
	notifier   *recordingNotifier
	reconciler *ReconcileService
}

func newReconcileFixture() *reconcileFixture {
	store := newStubLedgerStore()
	// Gateway lookup fails by default so the reconciler falls back to the
	// signed payload; tests that exercise corroboration set Status.
	gateway := &payment.StubGateway{StatusErr: errors.New("gateway unavailable")}
	notifier := &recordingNotifier{}
	settlement := NewSettlementService(store, PercentFeePolicy{Percent: 10}, fixedNow)
	reconciler := NewReconcileService(store, gateway, settlement, notifier, testServerKey, time.Second, 30, fixedNow)
	return &reconcileFixture{store: store, gateway: gateway, notifier: notifier, reconciler: reconciler}
}

func (f *reconcileFixture) seedSessionTransaction(orderID string, amount int64) *models.Transaction {
	sessionID := uint(7)
	trx := &models.Transaction{
		ID:        1,
		OrderID:   orderID,
		SessionID: &sessionID,
		UserID:    42,
		Amount:    amount,
		Status:    domain.TransactionStatusPending,
		Type:      domain.TransactionTypeSession,
	}
	if err := f.store.CreateTransaction(trx); err != nil {
		panic(err)
	}
	return trx
}

func signedNotification(orderID, status, statusCode, gross string) *PaymentNotification {
	return &PaymentNotification{
		OrderID:           orderID,
		TransactionStatus: status,
		PaymentType:       "qris",
		StatusCode:        statusCode,
		GrossAmount:       gross,
		SignatureKey:      payment.Signature(orderID, statusCode, gross, testServerKey),
		Raw:               []byte(`{"order_id":"` + orderID + `"}`),
	}
}

func TestProcessSettlementNotification(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)

	result := f.reconciler.Process(context.Background(), signedNotification("trx_abc", "settlement", "200", "50000.00"))
	if result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}

	trx, err := f.store.FindTransactionByOrderID("trx_abc")
	if err != nil {
		t.Fatal(err)
	}
	if trx.Status != domain.TransactionStatusPaid {
		t.Errorf("status = %q, want paid", trx.Status)
	}
	if trx.GrossAmount != 50000 || trx.PlatformFee != 5000 || trx.OwnerAmount != 45000 {
		t.Errorf("breakdown = %d/%d/%d, want 50000/5000/45000", trx.GrossAmount, trx.PlatformFee, trx.OwnerAmount)
	}
	if trx.PaymentType != "qris" {
		t.Errorf("payment type = %q, want qris", trx.PaymentType)
	}
	if trx.RawPayload == "" {
		t.Error("raw payload not persisted")
	}

	earning, err := f.store.GetMonthlyEarning(42, "2026-08")
	if err != nil {
		t.Fatal(err)
	}
	if earning.TotalGross != 50000 || earning.TotalFee != 5000 || earning.TotalNet != 45000 {
		t.Errorf("earning = %d/%d/%d, want 50000/5000/45000", earning.TotalGross, earning.TotalFee, earning.TotalNet)
	}

	if got := f.store.data.sessions[7]; got != domain.SessionStatusActive {
		t.Errorf("session status = %q, want active", got)
	}
	if len(f.notifier.orders) != 1 || f.notifier.orders[0] != "trx_abc" {
		t.Errorf("notified orders = %v, want [trx_abc]", f.notifier.orders)
	}
}

func TestProcessIdempotent(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	n := signedNotification("trx_abc", "settlement", "200", "50000.00")

	if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("first result = %v, want ReconcileOK", result)
	}
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileAlreadyProcessed {
		t.Fatalf("second result = %v, want ReconcileAlreadyProcessed", result)
	}

	earning, _ := f.store.GetMonthlyEarning(42, "2026-08")
	if earning.TotalGross != 50000 {
		t.Errorf("gross = %d after replay, want 50000", earning.TotalGross)
	}
	if len(f.notifier.orders) != 1 {
		t.Errorf("notified %d times, want 1", len(f.notifier.orders))
	}
}

func TestProcessTamperedSignature(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)

	n := signedNotification("trx_abc", "settlement", "200", "50000.00")
	n.GrossAmount = "99999.00" // signature no longer matches

	if result := f.reconciler.Process(context.Background(), n); result != ReconcileInvalidSignature {
		t.Fatalf("result = %v, want ReconcileInvalidSignature", result)
	}
	trx, _ := f.store.FindTransactionByOrderID("trx_abc")
	if trx.Status != domain.TransactionStatusPending {
		t.Errorf("status = %q, transaction must not change on bad signature", trx.Status)
	}
}

func TestProcessMissingSignature(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)

	n := signedNotification("trx_abc", "settlement", "200", "50000.00")
	n.SignatureKey = ""

	if result := f.reconciler.Process(context.Background(), n); result != ReconcileInvalidSignature {
		t.Fatalf("result = %v, want ReconcileInvalidSignature", result)
	}
}

func TestProcessNoServerKeySkipsVerification(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	settlement := NewSettlementService(f.store, PercentFeePolicy{Percent: 10}, fixedNow)
	open := NewReconcileService(f.store, f.gateway, settlement, f.notifier, "", time.Second, 30, fixedNow)

	n := signedNotification("trx_abc", "settlement", "200", "50000.00")
	n.SignatureKey = "garbage"

	if result := open.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK when no server key configured", result)
	}
}

func TestProcessUnknownOrder(t *testing.T) {
	f := newReconcileFixture()

	n := signedNotification("trx_missing", "settlement", "200", "50000.00")
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileUnknownOrder {
		t.Fatalf("result = %v, want ReconcileUnknownOrder", result)
	}
}

func TestProcessStatusMapping(t *testing.T) {
	cases := []struct {
		gateway string
		fraud   string
		want    string
	}{
		{"capture", "accept", domain.TransactionStatusPaid},
		{"capture", "", domain.TransactionStatusPaid},
		{"settlement", "", domain.TransactionStatusPaid},
		{"pending", "", domain.TransactionStatusPending},
		{"deny", "", domain.TransactionStatusFailed},
		{"cancel", "", domain.TransactionStatusFailed},
		{"expire", "", domain.TransactionStatusFailed},
		{"refund", "", domain.TransactionStatusPending}, // unrecognized, unchanged
		{"capture", "challenge", domain.TransactionStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.gateway+"/"+tc.fraud, func(t *testing.T) {
			f := newReconcileFixture()
			f.seedSessionTransaction("trx_abc", 50000)

			n := signedNotification("trx_abc", tc.gateway, "200", "50000.00")
			n.FraudStatus = tc.fraud

			if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
				t.Fatalf("result = %v, want ReconcileOK", result)
			}
			trx, _ := f.store.FindTransactionByOrderID("trx_abc")
			if trx.Status != tc.want {
				t.Errorf("status = %q, want %q", trx.Status, tc.want)
			}
			if trx.RawPayload == "" {
				t.Error("raw payload must be persisted even when status is unchanged")
			}
		})
	}
}

func TestProcessFailureNotifiesKiosk(t *testing.T) {
	for _, status := range []string{"deny", "cancel", "expire"} {
		t.Run(status, func(t *testing.T) {
			f := newReconcileFixture()
			f.seedSessionTransaction("trx_abc", 50000)

			n := signedNotification("trx_abc", status, "202", "50000.00")
			if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
				t.Fatalf("result = %v, want ReconcileOK", result)
			}
			if len(f.notifier.failed) != 1 || f.notifier.failed[0] != "trx_abc" {
				t.Errorf("failure notifications = %v, want [trx_abc]", f.notifier.failed)
			}
			if len(f.notifier.orders) != 0 {
				t.Errorf("paid notifications = %v, want none", f.notifier.orders)
			}
		})
	}

	// A pending update is not an outcome; the kiosk keeps waiting.
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	if result := f.reconciler.Process(context.Background(), signedNotification("trx_abc", "pending", "201", "50000.00")); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	if len(f.notifier.failed) != 0 || len(f.notifier.orders) != 0 {
		t.Errorf("notifications = paid %v failed %v, want none for pending", f.notifier.orders, f.notifier.failed)
	}
}

func TestProcessGatewayLookupOverridesPayload(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	// Payload claims settlement but the gateway's own record says deny.
	f.gateway.StatusErr = nil
	f.gateway.Status = &payment.Status{
		OrderID:           "trx_abc",
		TransactionStatus: "deny",
		PaymentType:       "credit_card",
		StatusCode:        "202",
		GrossAmount:       "50000.00",
	}

	n := signedNotification("trx_abc", "settlement", "200", "50000.00")
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	trx, _ := f.store.FindTransactionByOrderID("trx_abc")
	if trx.Status != domain.TransactionStatusFailed {
		t.Errorf("status = %q, want failed from gateway lookup", trx.Status)
	}
	if _, err := f.store.GetMonthlyEarning(42, "2026-08"); err == nil {
		t.Error("no earning may be recorded for a denied payment")
	}
}

func TestProcessLookupFailureFallsBackToPayload(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	f.gateway.StatusErr = errors.New("timeout")

	n := signedNotification("trx_abc", "settlement", "200", "50000.00")
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	trx, _ := f.store.FindTransactionByOrderID("trx_abc")
	if trx.Status != domain.TransactionStatusPaid {
		t.Errorf("status = %q, want paid from signed payload", trx.Status)
	}
}

func TestProcessConsumesVoucherLastUnit(t *testing.T) {
	f := newReconcileFixture()
	trx := f.seedSessionTransaction("trx_abc", 40000)
	voucherID := uint(3)
	f.store.SaveVoucher(&models.Voucher{ID: voucherID, Code: "LAST1", UserID: 42, Quota: 1, IsActive: true})
	trx.VoucherID = &voucherID
	f.store.SaveTransaction(trx)

	if result := f.reconciler.Process(context.Background(), signedNotification("trx_abc", "settlement", "200", "40000.00")); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	if _, err := f.store.FindVoucherByID(voucherID); err == nil {
		t.Error("exhausted voucher must be retired")
	}
	v := f.store.data.vouchers[voucherID]
	if v.UsedAt == nil || v.Quota != 0 || v.IsActive {
		t.Errorf("retired voucher = quota %d active %v usedAt %v", v.Quota, v.IsActive, v.UsedAt)
	}
}

func TestProcessDecrementsVoucherQuota(t *testing.T) {
	f := newReconcileFixture()
	trx := f.seedSessionTransaction("trx_abc", 40000)
	voucherID := uint(3)
	f.store.SaveVoucher(&models.Voucher{ID: voucherID, Code: "MULTI", UserID: 42, Quota: 3, IsActive: true})
	trx.VoucherID = &voucherID
	f.store.SaveTransaction(trx)

	if result := f.reconciler.Process(context.Background(), signedNotification("trx_abc", "settlement", "200", "40000.00")); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	v, err := f.store.FindVoucherByID(voucherID)
	if err != nil {
		t.Fatal(err)
	}
	if v.Quota != 2 {
		t.Errorf("quota = %d, want 2", v.Quota)
	}
	if !v.IsActive {
		t.Error("voucher with remaining quota must stay active")
	}
}

func TestProcessMissingVoucherIsNotFatal(t *testing.T) {
	f := newReconcileFixture()
	trx := f.seedSessionTransaction("trx_abc", 40000)
	voucherID := uint(99)
	trx.VoucherID = &voucherID
	f.store.SaveTransaction(trx)

	if result := f.reconciler.Process(context.Background(), signedNotification("trx_abc", "settlement", "200", "40000.00")); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	trx, _ = f.store.FindTransactionByOrderID("trx_abc")
	if trx.Status != domain.TransactionStatusPaid {
		t.Errorf("status = %q, want paid despite missing voucher", trx.Status)
	}
}

func TestProcessFaultAcksAndRollsBack(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	f.store.addEarningErr = errors.New("deadlock")

	n := signedNotification("trx_abc", "settlement", "200", "50000.00")
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileAckedFault {
		t.Fatalf("result = %v, want ReconcileAckedFault", result)
	}

	trx, _ := f.store.FindTransactionByOrderID("trx_abc")
	if trx.Status != domain.TransactionStatusPending {
		t.Errorf("status = %q, want pending after rollback", trx.Status)
	}
	if trx.GrossAmount != 0 {
		t.Errorf("gross = %d, want 0 after rollback", trx.GrossAmount)
	}
	if len(f.notifier.orders) != 0 {
		t.Error("no notification may be sent on a rolled-back payment")
	}

	// Retry after the fault clears succeeds.
	f.store.addEarningErr = nil
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("retry result = %v, want ReconcileOK", result)
	}
	earning, _ := f.store.GetMonthlyEarning(42, "2026-08")
	if earning.TotalGross != 50000 {
		t.Errorf("gross = %d after retry, want 50000", earning.TotalGross)
	}
}

func TestProcessMalformedGrossFallsBackToCharged(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)

	n := signedNotification("trx_abc", "settlement", "200", "not-a-number")
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}
	trx, _ := f.store.FindTransactionByOrderID("trx_abc")
	if trx.GrossAmount != 50000 {
		t.Errorf("gross = %d, want charged amount 50000", trx.GrossAmount)
	}
}

func TestProcessSubscriptionPayment(t *testing.T) {
	f := newReconcileFixture()
	trx := &models.Transaction{
		ID:      2,
		OrderID: "sub_001",
		UserID:  42,
		Amount:  150000,
		Status:  domain.TransactionStatusPending,
		Type:    domain.TransactionTypeSubscription,
	}
	if err := f.store.CreateTransaction(trx); err != nil {
		t.Fatal(err)
	}

	n := signedNotification("sub_001", "settlement", "200", "150000.00")
	if result := f.reconciler.Process(context.Background(), n); result != ReconcileOK {
		t.Fatalf("result = %v, want ReconcileOK", result)
	}

	got, _ := f.store.FindTransactionByOrderID("sub_001")
	if got.Status != domain.TransactionStatusPaid {
		t.Errorf("status = %q, want paid", got.Status)
	}
	want := testNow.AddDate(0, 0, 30)
	if exp := f.store.data.subscription[42]; !exp.Equal(want) {
		t.Errorf("subscription expiry = %v, want %v", exp, want)
	}
	// Platform revenue, not owner earnings.
	if _, err := f.store.GetMonthlyEarning(42, "2026-08"); err == nil {
		t.Error("subscription payments must not create owner earnings")
	}
}

func TestProcessConcurrentNotificationsSettleOnce(t *testing.T) {
	f := newReconcileFixture()
	f.seedSessionTransaction("trx_abc", 50000)
	n := signedNotification("trx_abc", "settlement", "200", "50000.00")

	var wg sync.WaitGroup
	results := make([]ReconcileResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.reconciler.Process(context.Background(), n)
		}(i)
	}
	wg.Wait()

	ok, replayed := 0, 0
	for _, r := range results {
		switch r {
		case ReconcileOK:
			ok++
		case ReconcileAlreadyProcessed:
			replayed++
		}
	}
	if ok != 1 || replayed != 1 {
		t.Fatalf("results = %v, want exactly one ReconcileOK and one ReconcileAlreadyProcessed", results)
	}
	earning, _ := f.store.GetMonthlyEarning(42, "2026-08")
	if earning.TotalGross != 50000 {
		t.Errorf("gross = %d, want 50000 settled exactly once", earning.TotalGross)
	}
}
