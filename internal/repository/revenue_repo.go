package repository

import (
	"clinic-ops-backend/internal/models"

	"gorm.io/gorm"
)

type RevenueRepository interface {
	// CreateIfAbsent records the entry unless one already exists for the
	// same appointment. Returns false when a prior entry was found.
	CreateIfAbsent(entry *models.RevenueEntry) (bool, error)
	// ListByRange returns entries with date in [from, to], optionally
	// filtered by doctor. Dates are YYYY-MM-DD strings.
	ListByRange(doctorID *uint, from, to string) ([]models.RevenueEntry, error)
}

type revenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepo(db *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db}
}

func (r *revenueRepository) CreateIfAbsent(entry *models.RevenueEntry) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if entry.AppointmentID != nil {
			var count int64
			if err := tx.Model(&models.RevenueEntry{}).
				Where("appointment_id = ?", *entry.AppointmentID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *revenueRepository) ListByRange(doctorID *uint, from, to string) ([]models.RevenueEntry, error) {
	var entries []models.RevenueEntry
	query := r.db.Where("date >= ? AND date <= ?", from, to)
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}
	err := query.Order("date ASC, id ASC").Find(&entries).Error
	return entries, err
}
