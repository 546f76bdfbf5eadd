package repository

import (
	"snapbooth/internal/models"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *models.BoothSession) error {
	return r.db.Create(s).Error
}

func (r *SessionRepository) GetByCode(code string) (*models.BoothSession, error) {
	var s models.BoothSession
	err := r.db.Where("code = ?", code).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) GetByCodeWithMedia(code string) (*models.BoothSession, error) {
	var s models.BoothSession
	err := r.db.
		Preload("Frame").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Where("code = ?", code).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Update(s *models.BoothSession) error {
	return r.db.Save(s).Error
}

func (r *SessionRepository) AddPhoto(p *models.SessionPhoto) error {
	return r.db.Create(p).Error
}

func (r *SessionRepository) CountPhotos(sessionID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.SessionPhoto{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

func (r *SessionRepository) ListByProject(projectID uint, limit int) ([]models.BoothSession, error) {
	var list []models.BoothSession
	q := r.db.Where("project_id = ?", projectID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&list).Error
	return list, err
}
