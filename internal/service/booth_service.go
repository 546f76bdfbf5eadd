package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"snapbooth/config"
	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
	"snapbooth/pkg/cloudinary"
	"snapbooth/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBoothKeyMismatch = errors.New("booth key mismatch")
	ErrProjectInactive  = errors.New("project is not active")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionState     = errors.New("session is not in a usable state")
	ErrVoucherInvalid   = errors.New("voucher is not redeemable")
)

// CheckoutResult is what the kiosk needs to proceed. A free checkout carries
// no gateway handle and the session is already active.
type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	Free        bool   `json:"free"`
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// BoothService drives the kiosk flow: booth-key auth, session lifecycle,
// checkout against the payment gateway, and photo delivery.
type BoothService struct {
	cfg      *config.Config
	projects *repository.ProjectRepository
	sessions *repository.SessionRepository
	vouchers *repository.VoucherRepository
	ledger   repository.LedgerStore
	gateway  payment.Gateway
	uploader cloudinary.Client
	now      func() time.Time
}

func NewBoothService(
	cfg *config.Config,
	projects *repository.ProjectRepository,
	sessions *repository.SessionRepository,
	vouchers *repository.VoucherRepository,
	ledger repository.LedgerStore,
	gateway payment.Gateway,
	uploader cloudinary.Client,
	now func() time.Time,
) *BoothService {
	if now == nil {
		now = time.Now
	}
	return &BoothService{
		cfg:      cfg,
		projects: projects,
		sessions: sessions,
		vouchers: vouchers,
		ledger:   ledger,
		gateway:  gateway,
		uploader: uploader,
		now:      now,
	}
}

// AuthorizeBooth resolves a project from its slug and booth key. Kiosks never
// hold owner credentials.
func (s *BoothService) AuthorizeBooth(slug, boothKey string) (*models.Project, error) {
	p, err := s.projects.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoothKeyMismatch
		}
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(p.BoothKey), []byte(boothKey)) != 1 {
		return nil, ErrBoothKeyMismatch
	}
	if !p.IsActive {
		return nil, ErrProjectInactive
	}
	return p, nil
}

// StartSession opens a capture session on the project. The session code is
// the public handle the gallery page and QR code point at.
func (s *BoothService) StartSession(project *models.Project, frameID *uint) (*models.BoothSession, error) {
	if frameID != nil {
		f, err := s.projects.GetFrame(*frameID)
		if err != nil || f.ProjectID != project.ID || !f.IsActive {
			return nil, errors.New("frame not available on this project")
		}
	}
	expires := s.now().Add(s.cfg.Booth.SessionTTL)
	sess := &models.BoothSession{
		Code:      strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		ProjectID: project.ID,
		FrameID:   frameID,
		Status:    domain.SessionStatusCreated,
		ExpiresAt: &expires,
	}
	if err := s.sessions.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Checkout prices the session, applies an optional voucher, and either opens
// a hosted checkout or, when the voucher brings the price to zero, completes
// payment immediately with no gateway round trip.
func (s *BoothService) Checkout(ctx context.Context, project *models.Project, sessionCode, voucherCode string, customer payment.Customer) (*CheckoutResult, error) {
	sess, err := s.sessions.GetByCode(sessionCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if sess.ProjectID != project.ID {
		return nil, ErrSessionNotFound
	}
	if sess.Status != domain.SessionStatusCreated {
		return nil, ErrSessionState
	}
	if sess.ExpiresAt != nil && sess.ExpiresAt.Before(s.now()) {
		sess.Status = domain.SessionStatusExpired
		_ = s.sessions.Update(sess)
		return nil, ErrSessionState
	}

	amount := project.SessionPrice
	var voucherID *uint
	if voucherCode != "" {
		v, err := s.vouchers.GetByCode(voucherCode)
		if err != nil {
			return nil, ErrVoucherInvalid
		}
		if v.UserID != project.OwnerID || !v.IsRedeemable(s.now()) {
			return nil, ErrVoucherInvalid
		}
		amount = v.DiscountedPrice(amount)
		voucherID = &v.ID
	}

	orderID := fmt.Sprintf("SB-%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]))
	trx := &models.Transaction{
		OrderID:   orderID,
		SessionID: &sess.ID,
		UserID:    project.OwnerID,
		Amount:    amount,
		Type:      domain.TransactionTypeSession,
		VoucherID: voucherID,
	}

	if amount <= 0 {
		trx.Status = domain.TransactionStatusFree
		err := s.ledger.WithinTransaction(func(tx repository.LedgerStore) error {
			if err := tx.CreateTransaction(trx); err != nil {
				return err
			}
			if err := s.redeemVoucher(tx, voucherID); err != nil {
				return err
			}
			return tx.MarkSessionStatus(sess.ID, domain.SessionStatusActive)
		})
		if err != nil {
			return nil, err
		}
		return &CheckoutResult{OrderID: orderID, Amount: 0, Free: true}, nil
	}

	trx.Status = domain.TransactionStatusPending
	if err := s.ledger.CreateTransaction(trx); err != nil {
		return nil, err
	}
	checkout, err := s.gateway.CreateTransaction(ctx, orderID, amount, customer)
	if err != nil {
		return nil, fmt.Errorf("checkout %s: %w", orderID, err)
	}
	sess.Status = domain.SessionStatusAwaitingPayment
	if err := s.sessions.Update(sess); err != nil {
		return nil, err
	}
	return &CheckoutResult{
		OrderID:     orderID,
		Amount:      amount,
		Token:       checkout.Token,
		RedirectURL: checkout.RedirectURL,
	}, nil
}

// VoucherQuote is the kiosk-facing discount preview.
type VoucherQuote struct {
	Code            string `json:"code"`
	OriginalPrice   int64  `json:"original_price"`
	DiscountedPrice int64  `json:"discounted_price"`
	Free            bool   `json:"free"`
}

// QuoteVoucher prices a voucher against the project's session price without
// consuming quota.
func (s *BoothService) QuoteVoucher(project *models.Project, code string) (*VoucherQuote, error) {
	v, err := s.vouchers.GetByCode(code)
	if err != nil {
		return nil, ErrVoucherInvalid
	}
	if v.UserID != project.OwnerID || !v.IsRedeemable(s.now()) {
		return nil, ErrVoucherInvalid
	}
	price := v.DiscountedPrice(project.SessionPrice)
	return &VoucherQuote{
		Code:            v.Code,
		OriginalPrice:   project.SessionPrice,
		DiscountedPrice: price,
		Free:            price == 0,
	}, nil
}

func (s *BoothService) redeemVoucher(tx repository.LedgerStore, voucherID *uint) error {
	if voucherID == nil {
		return nil
	}
	v, err := tx.FindVoucherByID(*voucherID)
	if err != nil {
		return err
	}
	if v.Quota <= 1 {
		return tx.RetireVoucher(v, s.now())
	}
	v.Quota--
	return tx.SaveVoucher(v)
}

// AddPhoto uploads one captured shot to the session.
func (s *BoothService) AddPhoto(ctx context.Context, project *models.Project, sessionCode string, file io.Reader) (*models.SessionPhoto, error) {
	sess, err := s.activeSession(project, sessionCode)
	if err != nil {
		return nil, err
	}
	count, err := s.sessions.CountPhotos(sess.ID)
	if err != nil {
		return nil, err
	}
	publicID := fmt.Sprintf("%s_%d", sess.Code, count+1)
	url, thumb, err := s.uploader.UploadImage(ctx, file, "sessions/"+project.Slug, publicID)
	if err != nil {
		return nil, err
	}
	photo := &models.SessionPhoto{
		SessionID:    sess.ID,
		URL:          url,
		ThumbnailURL: thumb,
		SortOrder:    int(count),
	}
	if err := s.sessions.AddPhoto(photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// Finalize uploads the composed strip and closes the session.
func (s *BoothService) Finalize(ctx context.Context, project *models.Project, sessionCode string, strip io.Reader) (*models.BoothSession, error) {
	sess, err := s.activeSession(project, sessionCode)
	if err != nil {
		return nil, err
	}
	url, _, err := s.uploader.UploadImage(ctx, strip, "strips/"+project.Slug, sess.Code+"_final")
	if err != nil {
		return nil, err
	}
	sess.FinalImageURL = url
	sess.Status = domain.SessionStatusCompleted
	if err := s.sessions.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *BoothService) activeSession(project *models.Project, code string) (*models.BoothSession, error) {
	sess, err := s.sessions.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if sess.ProjectID != project.ID {
		return nil, ErrSessionNotFound
	}
	if sess.Status != domain.SessionStatusActive {
		return nil, ErrSessionState
	}
	return sess, nil
}

// Gallery returns a completed or active session with its photos for the
// public gallery page. No auth: the session code is the capability.
func (s *BoothService) Gallery(code string) (*models.BoothSession, error) {
	sess, err := s.sessions.GetByCodeWithMedia(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	switch sess.Status {
	case domain.SessionStatusActive, domain.SessionStatusCompleted:
		return sess, nil
	default:
		return nil, ErrSessionNotFound
	}
}

// SubscribeCheckout opens a hosted checkout for the owner's next billing
// period.
func (s *BoothService) SubscribeCheckout(ctx context.Context, user *models.User) (*CheckoutResult, error) {
	orderID := fmt.Sprintf("SUB-%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]))
	trx := &models.Transaction{
		OrderID: orderID,
		UserID:  user.ID,
		Amount:  s.cfg.Subscription.Price,
		Status:  domain.TransactionStatusPending,
		Type:    domain.TransactionTypeSubscription,
	}
	if err := s.ledger.CreateTransaction(trx); err != nil {
		return nil, err
	}
	checkout, err := s.gateway.CreateTransaction(ctx, orderID, trx.Amount, payment.Customer{Name: user.Name, Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("subscription checkout %s: %w", orderID, err)
	}
	return &CheckoutResult{
		OrderID:     orderID,
		Amount:      trx.Amount,
		Token:       checkout.Token,
		RedirectURL: checkout.RedirectURL,
	}, nil
}
