package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"snapbooth/internal/middleware"
	"snapbooth/internal/models"
	"snapbooth/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type ProjectHandler struct {
	projects *repository.ProjectRepository
}

func NewProjectHandler(projects *repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type CreateProjectRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Slug         string `json:"slug" binding:"omitempty,max=64"`
	SessionPrice int64  `json:"session_price" binding:"required,min=0"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = req.Name
	}
	slug = strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(slug), "-"), "-")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug cannot be empty"})
		return
	}
	p := &models.Project{
		OwnerID:      middleware.GetUserID(c),
		Name:         req.Name,
		Slug:         slug,
		BoothKey:     uuid.NewString(),
		SessionPrice: req.SessionPrice,
		IsActive:     true,
	}
	if err := h.projects.Create(p); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "slug already taken"})
		return
	}
	// Booth key is returned once at creation and on explicit rotation only.
	c.JSON(http.StatusCreated, gin.H{"project": p, "booth_key": p.BoothKey})
}

func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.projects.ListByOwner(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

type UpdateProjectRequest struct {
	Name         *string `json:"name"`
	SessionPrice *int64  `json:"session_price"`
	IsActive     *bool   `json:"is_active"`
}

func (h *ProjectHandler) Update(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.SessionPrice != nil {
		p.SessionPrice = *req.SessionPrice
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.projects.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	if err := h.projects.Delete(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// RotateBoothKey invalidates the current booth key. Deployed kiosks must be
// re-provisioned with the new key.
func (h *ProjectHandler) RotateBoothKey(c *gin.Context) {
	p, ok := h.ownedProject(c)
	if !ok {
		return
	}
	p.BoothKey = uuid.NewString()
	if err := h.projects.Update(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rotation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booth_key": p.BoothKey})
}

// ownedProject loads the :id project and enforces ownership. Writes the error
// response itself when it returns false.
func (h *ProjectHandler) ownedProject(c *gin.Context) (*models.Project, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return nil, false
	}
	p, err := h.projects.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return nil, false
	}
	if p.OwnerID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return nil, false
	}
	return p, true
}
