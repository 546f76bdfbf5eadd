package handler

import (
	"net/http"
	"strconv"

	"snapbooth/internal/middleware"
	"snapbooth/internal/repository"

	"github.com/gin-gonic/gin"
)

// WalletHandler serves the legacy wallet tables read-only. Settlement moved
// to monthly earnings; these endpoints exist so old dashboards keep working.
type WalletHandler struct {
	wallets *repository.WalletRepository
}

func NewWalletHandler(wallets *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

func (h *WalletHandler) Get(c *gin.Context) {
	w, err := h.wallets.GetByUserID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"balance": 0, "legacy": true})
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := h.wallets.ListTransactions(middleware.GetUserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
