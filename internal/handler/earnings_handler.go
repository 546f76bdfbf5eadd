package handler

import (
	"net/http"
	"strconv"

	"snapbooth/internal/middleware"
	"snapbooth/internal/repository"
	"snapbooth/internal/service"

	"github.com/gin-gonic/gin"
)

type EarningsHandler struct {
	svc    *service.EarningsService
	ledger *repository.LedgerRepository
}

func NewEarningsHandler(svc *service.EarningsService, ledger *repository.LedgerRepository) *EarningsHandler {
	return &EarningsHandler{svc: svc, ledger: ledger}
}

// Summary returns the month in progress, zeros when nothing settled yet.
func (h *EarningsHandler) Summary(c *gin.Context) {
	earning, err := h.svc.CurrentMonthSummary(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, earning)
}

func (h *EarningsHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	history, err := h.svc.MonthlyHistory(middleware.GetUserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": history})
}

// Transactions lists the owner's recent ledger entries.
func (h *EarningsHandler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := h.ledger.ListTransactionsByUser(middleware.GetUserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
