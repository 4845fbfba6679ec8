package repository

import (
	"errors"

	"clinic-ops-backend/internal/models"

	"gorm.io/gorm"
)

type ScheduleTemplateRepository interface {
	ListByDoctor(doctorID uint) ([]models.ScheduleTemplate, error)
	GetByID(id uint) (*models.ScheduleTemplate, error)
	Create(template *models.ScheduleTemplate) error
	Delete(id uint) error
}

type scheduleTemplateRepository struct {
	db *gorm.DB
}

func NewScheduleTemplateRepo(db *gorm.DB) ScheduleTemplateRepository {
	return &scheduleTemplateRepository{db: db}
}

// ListByDoctor returns all weekly templates and date overrides for a
// doctor. Overrides sort first so callers scanning linearly see them
// before the weekly fallback.
func (r *scheduleTemplateRepository) ListByDoctor(doctorID uint) ([]models.ScheduleTemplate, error) {
	var templates []models.ScheduleTemplate
	err := r.db.Where("doctor_id = ?", doctorID).
		Order("date IS NULL ASC, weekday ASC, start_time ASC").
		Find(&templates).Error
	return templates, err
}

func (r *scheduleTemplateRepository) GetByID(id uint) (*models.ScheduleTemplate, error) {
	var template models.ScheduleTemplate
	err := r.db.Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

func (r *scheduleTemplateRepository) Create(template *models.ScheduleTemplate) error {
	return r.db.Create(template).Error
}

func (r *scheduleTemplateRepository) Delete(id uint) error {
	result := r.db.Delete(&models.ScheduleTemplate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
