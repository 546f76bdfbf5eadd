package service

import (
	"context"
	"encoding/json"
	"fmt"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
	"snapbooth/internal/ws"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	hub      *ws.BoothHub
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, hub *ws.BoothHub) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	s.sendPush(userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(userID uint, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u == nil || u.FCMToken == "" {
		return
	}
	_ = s.fcm.SendToUser(context.Background(), u.FCMToken, notifType, title, body, data)
}

// SessionPaid fans a confirmed payment out to the kiosk waiting on the order
// and to the project owner's phone.
func (s *NotificationService) SessionPaid(trx *models.Transaction) {
	if s.hub != nil {
		s.hub.NotifyOrder(trx.OrderID, trx.Status)
	}
	if trx.Type == domain.TransactionTypeSubscription {
		s.SubscriptionPaid(trx.UserID, trx.OrderID, trx.Amount)
		return
	}
	_ = s.Notify(trx.UserID, "SESSION_PAID", "Session paid",
		fmt.Sprintf("A booth session was paid: Rp%d", trx.Amount),
		map[string]interface{}{"order_id": trx.OrderID, "amount": trx.Amount})
}

// SessionFailed tells the kiosk the payment was denied, cancelled, or
// expired so it can show the failure instead of waiting forever. The owner
// gets no push for failed guest payments.
func (s *NotificationService) SessionFailed(trx *models.Transaction) {
	if s.hub != nil {
		s.hub.NotifyOrder(trx.OrderID, trx.Status)
	}
}

// SubscriptionPaid tells the owner their plan was extended.
func (s *NotificationService) SubscriptionPaid(userID uint, orderID string, amount int64) {
	_ = s.Notify(userID, "SUBSCRIPTION_PAID", "Subscription renewed",
		"Your subscription payment was received.",
		map[string]interface{}{"order_id": orderID, "amount": amount})
}
