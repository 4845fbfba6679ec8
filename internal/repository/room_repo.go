package repository

import (
	"errors"

	"clinic-ops-backend/internal/models"

	"gorm.io/gorm"
)

type RoomRepository interface {
	GetAll() ([]models.Room, error)
	GetByID(id uint) (*models.Room, error)
	// GetByAssignedDoctor returns the room currently assigned to the
	// doctor, or ErrNotFound.
	GetByAssignedDoctor(doctorID uint) (*models.Room, error)
	Create(room *models.Room) error
	Update(id uint, updates map[string]interface{}) error
	// AssignDoctor sets the doctor as the room's specialist, clearing
	// any other room pointing at the same doctor in the same
	// transaction.
	AssignDoctor(roomID, doctorID uint) error
	Unassign(roomID uint) error
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) GetAll() ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Where("is_active = ?", true).
		Preload("AssignedDoctor").
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *roomRepository) GetByID(id uint) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) GetByAssignedDoctor(doctorID uint) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("assigned_doctor_id = ? AND is_active = ?", doctorID, true).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *roomRepository) Update(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Room{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *roomRepository) AssignDoctor(roomID, doctorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Clear the doctor from any other room first so a crash between
		// the steps can only leave the old assignment, never two.
		if err := tx.Model(&models.Room{}).
			Where("assigned_doctor_id = ? AND id <> ?", doctorID, roomID).
			Update("assigned_doctor_id", nil).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Room{}).
			Where("id = ? AND is_active = ?", roomID, true).
			Update("assigned_doctor_id", doctorID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *roomRepository) Unassign(roomID uint) error {
	result := r.db.Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("assigned_doctor_id", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
