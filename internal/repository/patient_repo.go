package repository

import (
	"errors"

	"clinic-ops-backend/internal/models"

	"gorm.io/gorm"
)

type PatientRepository interface {
	GetAll() ([]models.Patient, error)
	GetByID(id uint) (*models.Patient, error)
	Create(patient *models.Patient) error
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) GetAll() ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&patients).Error
	return patients, err
}

func (r *patientRepository) GetByID(id uint) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Create(patient *models.Patient) error {
	return r.db.Create(patient).Error
}
