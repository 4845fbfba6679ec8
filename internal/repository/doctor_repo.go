package repository

import (
	"errors"

	"clinic-ops-backend/internal/models"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	GetAll(includeInactive bool) ([]models.Doctor, error)
	GetByID(id uint) (*models.Doctor, error)
	Create(doctor *models.Doctor) error
	Update(id uint, updates map[string]interface{}) error
	Deactivate(id uint) error
}

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) GetAll(includeInactive bool) ([]models.Doctor, error) {
	var doctors []models.Doctor
	query := r.db.Order("full_name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&doctors).Error
	return doctors, err
}

func (r *doctorRepository) GetByID(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) Create(doctor *models.Doctor) error {
	return r.db.Create(doctor).Error
}

func (r *doctorRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Doctor{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Deactivate soft-disables a doctor. Doctors are never deleted once
// appointments reference them.
func (r *doctorRepository) Deactivate(id uint) error {
	result := r.db.Model(&models.Doctor{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
