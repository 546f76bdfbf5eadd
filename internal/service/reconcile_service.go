package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
	"snapbooth/pkg/payment"
)

// ReconcileResult tells the webhook handler which acknowledgement to send.
type ReconcileResult int

const (
	// ReconcileOK means the notification was applied.
	ReconcileOK ReconcileResult = iota
	// ReconcileUnknownOrder means no transaction matches the order id.
	ReconcileUnknownOrder
	// ReconcileAlreadyProcessed means the transaction was already terminal.
	ReconcileAlreadyProcessed
	// ReconcileInvalidSignature means the signature check failed.
	ReconcileInvalidSignature
	// ReconcileAckedFault means an internal fault was swallowed so the
	// gateway stops retrying; the order stays eligible for backfill.
	ReconcileAckedFault
)

// PaymentNotification is the decoded gateway webhook body plus the raw bytes
// as received, persisted verbatim for audit.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`

	Raw []byte `json:"-"`
}

// SessionNotifier pushes payment outcomes to listening kiosks and owners.
type SessionNotifier interface {
	SessionPaid(trx *models.Transaction)
	SessionFailed(trx *models.Transaction)
}

// ReconcileService applies gateway payment notifications to the ledger:
// verifies the webhook signature, corroborates against a direct status
// lookup, transitions the transaction, and on a paid photobooth session
// settles earnings and consumes the voucher in the same database
// transaction. Faults after a valid signature are logged and acked so the
// gateway does not retry forever.
type ReconcileService struct {
	store      repository.LedgerStore
	gateway    payment.Gateway
	settlement *SettlementService
	hub        SessionNotifier

	serverKey     string
	statusTimeout time.Duration
	periodDays    int
	now           func() time.Time
}

func NewReconcileService(
	store repository.LedgerStore,
	gateway payment.Gateway,
	settlement *SettlementService,
	hub SessionNotifier,
	serverKey string,
	statusTimeout time.Duration,
	subscriptionPeriodDays int,
	now func() time.Time,
) *ReconcileService {
	if now == nil {
		now = time.Now
	}
	if statusTimeout <= 0 {
		statusTimeout = 5 * time.Second
	}
	return &ReconcileService{
		store:         store,
		gateway:       gateway,
		settlement:    settlement,
		hub:           hub,
		serverKey:     serverKey,
		statusTimeout: statusTimeout,
		periodDays:    subscriptionPeriodDays,
		now:           now,
	}
}

// Process runs the full reconciliation for one notification.
func (s *ReconcileService) Process(ctx context.Context, n *PaymentNotification) ReconcileResult {
	if s.serverKey != "" {
		if !payment.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, s.serverKey, n.SignatureKey) {
			log.Printf("[Webhook] invalid signature for order_id=%s", n.OrderID)
			return ReconcileInvalidSignature
		}
	}

	status := s.corroborate(ctx, n)

	var (
		result ReconcileResult
		paid   *models.Transaction
		failed *models.Transaction
	)
	err := s.store.WithinTransaction(func(tx repository.LedgerStore) error {
		trx, err := tx.LockTransactionByOrderID(n.OrderID)
		if errors.Is(err, repository.ErrTransactionNotFound) {
			result = ReconcileUnknownOrder
			return nil
		}
		if err != nil {
			return err
		}
		if trx.IsTerminal() {
			result = ReconcileAlreadyProcessed
			return nil
		}

		// Keep the audit trail even when the status does not move.
		trx.PaymentType = status.PaymentType
		trx.RawPayload = string(n.Raw)
		if mapped, ok := mapGatewayStatus(status); ok {
			trx.Status = mapped
		}

		if trx.IsPaid() {
			if trx.Type == domain.TransactionTypeSession {
				if gross := resolveGross(status.GrossAmount, trx.Amount); gross > 0 {
					if err := s.settlement.Record(tx, trx, gross); err != nil {
						return err
					}
				} else if err := tx.SaveTransaction(trx); err != nil {
					return err
				}
				if err := s.consumeVoucher(tx, trx); err != nil {
					return err
				}
				if trx.SessionID != nil {
					if err := tx.MarkSessionStatus(*trx.SessionID, domain.SessionStatusActive); err != nil {
						return err
					}
				}
			} else {
				if err := tx.SaveTransaction(trx); err != nil {
					return err
				}
				if trx.Type == domain.TransactionTypeSubscription {
					if err := tx.ExtendSubscription(trx.UserID, s.periodDays, s.now()); err != nil {
						return err
					}
				}
			}
			paid = trx
			result = ReconcileOK
			return nil
		}

		if trx.Status == domain.TransactionStatusFailed {
			failed = trx
		}
		result = ReconcileOK
		return tx.SaveTransaction(trx)
	})
	if err != nil {
		log.Printf("[Webhook] processing failed for order_id=%s: %v", n.OrderID, err)
		return ReconcileAckedFault
	}

	if s.hub != nil {
		switch {
		case paid != nil:
			s.hub.SessionPaid(paid)
		case failed != nil:
			s.hub.SessionFailed(failed)
		}
	}
	return result
}

// corroborate asks the gateway for its authoritative view of the order. When
// the lookup fails or exceeds the deadline, the webhook payload itself is
// trusted; the signature already vouched for it.
func (s *ReconcileService) corroborate(ctx context.Context, n *PaymentNotification) *payment.Status {
	fallback := &payment.Status{
		OrderID:           n.OrderID,
		TransactionStatus: n.TransactionStatus,
		PaymentType:       n.PaymentType,
		StatusCode:        n.StatusCode,
		GrossAmount:       n.GrossAmount,
		FraudStatus:       n.FraudStatus,
	}
	if s.gateway == nil {
		return fallback
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.statusTimeout)
	defer cancel()

	status, err := s.gateway.CheckStatus(lookupCtx, n.OrderID)
	if err != nil {
		log.Printf("[Webhook] status lookup failed for order_id=%s, trusting payload: %v", n.OrderID, err)
		return fallback
	}
	return status
}

// mapGatewayStatus translates the gateway's vocabulary into ours. Statuses we
// do not recognize leave the transaction untouched.
func mapGatewayStatus(st *payment.Status) (string, bool) {
	switch st.TransactionStatus {
	case "capture":
		// Card payments report capture with a fraud verdict attached.
		if st.FraudStatus != "" && st.FraudStatus != "accept" {
			return "", false
		}
		return domain.TransactionStatusPaid, true
	case "settlement":
		return domain.TransactionStatusPaid, true
	case "pending":
		return domain.TransactionStatusPending, true
	case "deny", "cancel", "expire":
		return domain.TransactionStatusFailed, true
	default:
		return "", false
	}
}

// resolveGross parses the gateway's decimal gross amount, falling back to the
// amount we charged when the field is missing or malformed.
func resolveGross(raw string, fallback int64) int64 {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
			return int64(math.Round(f))
		}
	}
	return fallback
}

// consumeVoucher burns one quota unit off the voucher attached to the
// transaction. The last unit retires the voucher entirely. A voucher that
// vanished since checkout is not an error.
func (s *ReconcileService) consumeVoucher(tx repository.LedgerStore, trx *models.Transaction) error {
	if trx.VoucherID == nil {
		return nil
	}
	v, err := tx.FindVoucherByID(*trx.VoucherID)
	if errors.Is(err, repository.ErrVoucherNotFound) {
		log.Printf("[Webhook] voucher %d missing for order_id=%s, skipping consumption", *trx.VoucherID, trx.OrderID)
		return nil
	}
	if err != nil {
		return err
	}
	if v.Quota <= 1 {
		return tx.RetireVoucher(v, s.now())
	}
	v.Quota--
	return tx.SaveVoucher(v)
}
