package handler

import (
	"fmt"
	"net/http"

	"snapbooth/config"
	"snapbooth/internal/models"
	"snapbooth/internal/service"
	"snapbooth/pkg/payment"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

const maxPhotoBytes = 15 << 20

type BoothHandler struct {
	cfg *config.Config
	svc *service.BoothService
}

func NewBoothHandler(cfg *config.Config, svc *service.BoothService) *BoothHandler {
	return &BoothHandler{cfg: cfg, svc: svc}
}

// BoothAuth authenticates a kiosk by project slug and booth key. The resolved
// project is stashed in the context for the handlers below.
func (h *BoothHandler) BoothAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := h.svc.AuthorizeBooth(c.Param("slug"), c.GetHeader("X-Booth-Key"))
		if err != nil {
			switch err {
			case service.ErrBoothKeyMismatch:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid booth credentials"})
			case service.ErrProjectInactive:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "project is not active"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "booth auth failed"})
			}
			return
		}
		c.Set("project", p)
		c.Next()
	}
}

func boothProject(c *gin.Context) *models.Project {
	return c.MustGet("project").(*models.Project)
}

// CheckVoucher quotes a voucher against the project's session price so the
// kiosk can show the discount before checkout. Does not consume quota.
func (h *BoothHandler) CheckVoucher(c *gin.Context) {
	quote, err := h.svc.QuoteVoucher(boothProject(c), c.Param("voucherCode"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "voucher not valid for this booth"})
		return
	}
	c.JSON(http.StatusOK, quote)
}

type StartSessionRequest struct {
	FrameID *uint `json:"frame_id"`
}

func (h *BoothHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.svc.StartSession(boothProject(c), req.FrameID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sess)
}

type CheckoutRequest struct {
	VoucherCode string `json:"voucher_code"`
	Name        string `json:"name"`
	Email       string `json:"email" binding:"omitempty,email"`
}

func (h *BoothHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.Checkout(c.Request.Context(), boothProject(c), c.Param("code"), req.VoucherCode,
		payment.Customer{Name: req.Name, Email: req.Email})
	if err != nil {
		switch err {
		case service.ErrSessionNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case service.ErrSessionState, service.ErrVoucherInvalid:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "checkout failed"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadPhoto receives one capture (multipart form: photo).
func (h *BoothHandler) UploadPhoto(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	if fh.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer file.Close()

	photo, err := h.svc.AddPhoto(c.Request.Context(), boothProject(c), c.Param("code"), file)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// Finalize receives the composed strip (multipart form: strip) and closes the
// session.
func (h *BoothHandler) Finalize(c *gin.Context) {
	fh, err := c.FormFile("strip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "strip file required"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read strip"})
		return
	}
	defer file.Close()

	sess, err := h.svc.Finalize(c.Request.Context(), boothProject(c), c.Param("code"), file)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":     sess,
		"gallery_url": h.galleryURL(sess.Code),
	})
}

// Gallery is the public session page: the code is the only credential.
func (h *BoothHandler) Gallery(c *gin.Context) {
	sess, err := h.svc.Gallery(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GalleryQR renders a QR code pointing at the gallery page, shown on the
// kiosk screen for guests to scan.
func (h *BoothHandler) GalleryQR(c *gin.Context) {
	sess, err := h.svc.Gallery(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	png, err := qrcode.Encode(h.galleryURL(sess.Code), qrcode.Medium, 512)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr generation failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *BoothHandler) galleryURL(code string) string {
	return fmt.Sprintf("%s/gallery/%s", h.cfg.Server.PublicURL, code)
}

func (h *BoothHandler) sessionError(c *gin.Context, err error) {
	switch err {
	case service.ErrSessionNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrSessionState:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
