package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"snapbooth/internal/middleware"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"
	"snapbooth/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

const maxOverlayBytes = 10 << 20

type FrameHandler struct {
	projects *repository.ProjectRepository
	uploader cloudinary.Client
}

func NewFrameHandler(projects *repository.ProjectRepository, uploader cloudinary.Client) *FrameHandler {
	return &FrameHandler{projects: projects, uploader: uploader}
}

// Create uploads a frame overlay (multipart form: overlay, name, slot_count).
func (h *FrameHandler) Create(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	slotCount, _ := strconv.Atoi(c.DefaultPostForm("slot_count", "4"))
	if slotCount < 1 || slotCount > 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot_count must be 1-8"})
		return
	}
	fh, err := c.FormFile("overlay")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "overlay file required"})
		return
	}
	if fh.Size > maxOverlayBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "overlay too large"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read overlay"})
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("frame_%d_%s", p.ID, fh.Filename)
	url, thumb, err := h.uploader.UploadImage(c.Request.Context(), file, "frames/"+p.Slug, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	f := &models.Frame{
		ProjectID:    p.ID,
		Name:         name,
		OverlayURL:   url,
		ThumbnailURL: thumb,
		SlotCount:    slotCount,
		IsActive:     true,
	}
	if err := h.projects.CreateFrame(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *FrameHandler) List(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	frames, err := h.projects.ListFrames(p.ID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"frames": frames})
}

type UpdateFrameRequest struct {
	Name      *string `json:"name"`
	SlotCount *int    `json:"slot_count"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

func (h *FrameHandler) Update(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	f, ok := h.frameOf(c, p)
	if !ok {
		return
	}
	var req UpdateFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		f.Name = *req.Name
	}
	if req.SlotCount != nil {
		f.SlotCount = *req.SlotCount
	}
	if req.SortOrder != nil {
		f.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	if err := h.projects.UpdateFrame(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FrameHandler) Delete(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	f, ok := h.frameOf(c, p)
	if !ok {
		return
	}
	if err := h.projects.DeleteFrame(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "frame deleted"})
}

func (h *FrameHandler) ownedProject(c *gin.Context) (*models.Project, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return nil, false
	}
	p, err := h.projects.GetByID(uint(id))
	if err != nil || p.OwnerID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return nil, false
	}
	return p, true
}

func (h *FrameHandler) frameOf(c *gin.Context, p *models.Project) (*models.Frame, bool) {
	id, err := strconv.ParseUint(c.Param("frameId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame id"})
		return nil, false
	}
	f, err := h.projects.GetFrame(uint(id))
	if err != nil || f.ProjectID != p.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "frame not found"})
		return nil, false
	}
	return f, true
}
