package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"snapbooth/internal/domain"
	"snapbooth/internal/middleware"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	vouchers *repository.VoucherRepository
}

func NewVoucherHandler(vouchers *repository.VoucherRepository) *VoucherHandler {
	return &VoucherHandler{vouchers: vouchers}
}

type CreateVoucherRequest struct {
	Code      string `json:"code" binding:"required,min=3,max=32"`
	Type      string `json:"type" binding:"required,oneof=percent fixed"`
	Value     int64  `json:"value" binding:"required,min=1"`
	Quota     int    `json:"quota" binding:"required,min=1"`
	ExpiresAt string `json:"expires_at"` // RFC3339, optional
}

func (h *VoucherHandler) Create(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == domain.VoucherTypePercent && req.Value > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percent value cannot exceed 100"})
		return
	}
	v := &models.Voucher{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		UserID:   middleware.GetUserID(c),
		Type:     req.Type,
		Value:    req.Value,
		Quota:    req.Quota,
		IsActive: true,
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires_at (use RFC3339)"})
			return
		}
		v.ExpiresAt = &t
	}
	if err := h.vouchers.Create(v); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "voucher code already exists"})
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *VoucherHandler) List(c *gin.Context) {
	list, err := h.vouchers.ListByOwner(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": list})
}

type UpdateVoucherRequest struct {
	Quota    *int  `json:"quota"`
	IsActive *bool `json:"is_active"`
}

func (h *VoucherHandler) Update(c *gin.Context) {
	v, ok := h.owned(c)
	if !ok {
		return
	}
	var req UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quota != nil {
		if *req.Quota < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quota cannot be negative"})
			return
		}
		v.Quota = *req.Quota
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	if err := h.vouchers.Update(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VoucherHandler) Delete(c *gin.Context) {
	v, ok := h.owned(c)
	if !ok {
		return
	}
	if err := h.vouchers.Delete(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "voucher deleted"})
}

func (h *VoucherHandler) owned(c *gin.Context) (*models.Voucher, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid voucher id"})
		return nil, false
	}
	v, err := h.vouchers.GetByID(uint(id))
	if err != nil || v.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "voucher not found"})
		return nil, false
	}
	return v, true
}
