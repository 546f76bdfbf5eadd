package handler

import (
	"net/http"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/middleware"
	"snapbooth/internal/repository"
	"snapbooth/internal/service"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	booth    *service.BoothService
	userRepo *repository.UserRepository
}

func NewSubscriptionHandler(booth *service.BoothService, userRepo *repository.UserRepository) *SubscriptionHandler {
	return &SubscriptionHandler{booth: booth, userRepo: userRepo}
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	u, err := h.userRepo.GetWithSubscription(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if u.Subscription == nil {
		c.JSON(http.StatusOK, gin.H{"status": "none"})
		return
	}
	status := u.Subscription.Status
	if u.Subscription.ExpiresAt.Before(time.Now()) {
		status = domain.SubscriptionStatusExpired
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"expires_at": u.Subscription.ExpiresAt,
	})
}

// Checkout opens a gateway checkout for the next billing period. The actual
// extension happens when the payment notification lands.
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	result, err := h.booth.SubscribeCheckout(c.Request.Context(), u)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}
