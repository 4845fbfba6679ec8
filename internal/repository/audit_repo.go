package repository

import (
	"clinic-ops-backend/internal/models"

	"gorm.io/gorm"
)

type AuditRepository interface {
	CreateAuditLog(userID *uint, action string, details string) error
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *auditRepository) CreateAuditLog(userID *uint, action string, details string) error {
	log := &models.AuditLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	return r.db.Create(log).Error
}
