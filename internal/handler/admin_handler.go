package handler

import (
	"net/http"
	"strconv"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
	"snapbooth/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminLedger is the slice of the ledger repository the admin surface needs.
type AdminLedger interface {
	ListTransactions(limit, offset int) ([]models.Transaction, error)
	MarkTransactionPaidOut(orderID string, at time.Time) error
	MarkEarningPaid(id uint, at time.Time) error
}

type AdminHandler struct {
	ledger     AdminLedger
	settings   *repository.SettingRepository
	settlement *service.SettlementService
}

func NewAdminHandler(ledger AdminLedger, settings *repository.SettingRepository, settlement *service.SettlementService) *AdminHandler {
	return &AdminHandler{ledger: ledger, settings: settings, settlement: settlement}
}

func (h *AdminHandler) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := h.ledger.ListTransactions(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// Backfill settles paid transactions that missed settlement, e.g. rows acked
// through a webhook fault.
func (h *AdminHandler) Backfill(c *gin.Context) {
	settled, err := h.settlement.Backfill()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "backfill failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": settled})
}

// MarkPaidOut stamps paid_out_at on a paid transaction after the manual
// transfer went through.
func (h *AdminHandler) MarkPaidOut(c *gin.Context) {
	orderID := c.Param("orderId")
	if err := h.ledger.MarkTransactionPaidOut(orderID, time.Now()); err != nil {
		if err == repository.ErrTransactionNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no paid transaction with that order id"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked paid out"})
}

// MarkEarningPaid closes out a monthly earning after payout.
func (h *AdminHandler) MarkEarningPaid(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid earning id"})
		return
	}
	if err := h.ledger.MarkEarningPaid(uint(id), time.Now()); err != nil {
		if err == repository.ErrEarningNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "earning not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "earning marked paid"})
}

func (h *AdminHandler) ListSettings(c *gin.Context) {
	list, err := h.settings.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if key == domain.SettingPlatformFeePercent {
		f, err := strconv.ParseFloat(req.Value, 64)
		if err != nil || f < 0 || f > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fee percent must be 0-100"})
			return
		}
	}
	if err := h.settings.Set(key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "setting updated"})
}
