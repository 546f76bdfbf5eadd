package repository

import (
	"snapbooth/internal/models"

	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) GetBySlug(slug string) (*models.Project, error) {
	var p models.Project
	err := r.db.Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ListByOwner(ownerID uint) ([]models.Project, error) {
	var list []models.Project
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ProjectRepository) Update(p *models.Project) error {
	return r.db.Save(p).Error
}

func (r *ProjectRepository) Delete(p *models.Project) error {
	return r.db.Delete(p).Error
}

// --- frames ---

func (r *ProjectRepository) CreateFrame(f *models.Frame) error {
	return r.db.Create(f).Error
}

func (r *ProjectRepository) GetFrame(id uint) (*models.Frame, error) {
	var f models.Frame
	err := r.db.First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *ProjectRepository) ListFrames(projectID uint, activeOnly bool) ([]models.Frame, error) {
	var list []models.Frame
	q := r.db.Where("project_id = ?", projectID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("sort_order ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *ProjectRepository) UpdateFrame(f *models.Frame) error {
	return r.db.Save(f).Error
}

func (r *ProjectRepository) DeleteFrame(f *models.Frame) error {
	return r.db.Delete(f).Error
}
