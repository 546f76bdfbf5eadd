package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"snapbooth/internal/service"

	"github.com/gin-gonic/gin"
)

// Reconciler applies one gateway notification to the ledger.
type Reconciler interface {
	Process(ctx context.Context, n *service.PaymentNotification) service.ReconcileResult
}

// PaymentWebhookHandler receives Midtrans HTTP notifications. Response policy:
// the gateway retries on non-2xx, so anything that retrying cannot fix is
// acknowledged with 200. Only a signature mismatch gets a 403.
type PaymentWebhookHandler struct {
	reconciler Reconciler
}

func NewPaymentWebhookHandler(reconciler Reconciler) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{reconciler: reconciler}
}

func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	var n service.PaymentNotification
	if err := json.Unmarshal(body, &n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if n.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "order_id required"})
		return
	}
	n.Raw = body

	switch h.reconciler.Process(c.Request.Context(), &n) {
	case service.ReconcileInvalidSignature:
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid signature"})
	case service.ReconcileUnknownOrder:
		c.JSON(http.StatusOK, gin.H{"message": "order not found"})
	case service.ReconcileAlreadyProcessed:
		c.JSON(http.StatusOK, gin.H{"message": "already processed"})
	case service.ReconcileAckedFault:
		c.JSON(http.StatusOK, gin.H{"message": "ack"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
}
