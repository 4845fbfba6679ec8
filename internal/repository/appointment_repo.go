package repository

import (
	"errors"
	"time"

	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/scheduling"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository interface {
	GetByID(id uint) (*models.Appointment, error)
	// ListActiveInRange returns active appointments for a doctor whose
	// occupied interval overlaps [from, to).
	ListActiveInRange(doctorID uint, from, to time.Time) ([]models.Appointment, error)
	ListByPatient(patientID uint, from time.Time) ([]models.Appointment, error)
	// ListActiveBetween returns all active appointments starting inside
	// [from, to), with patient and doctor preloaded. Used by the
	// reminder worker.
	ListActiveBetween(from, to time.Time) ([]models.Appointment, error)
	// CreateIfSlotFree persists the appointment only if no active
	// appointment for the doctor overlaps it. Returns ErrConflict when
	// the slot was taken concurrently.
	CreateIfSlotFree(appt *models.Appointment) error
	// RescheduleIfSlotFree moves an appointment to a new doctor/time
	// under the same conditional-write semantics, recording the given
	// status event. The appointment's previous slot is freed implicitly.
	RescheduleIfSlotFree(id uint, newDoctorID uint, newStart time.Time, newDurationMinutes int, event models.AppointmentStatusEvent) error
	// TransitionStatus flips the status only if the current status still
	// matches fromStatus, appending to the status event log. Returns
	// ErrConflict when the appointment moved on concurrently.
	TransitionStatus(id uint, fromStatus, toStatus, reason string, actorUserID *uint) error
	UpdateRoomProjection(id uint, roomID *uint, roomName, roomColor string, reconciledAt time.Time) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

var activeStatuses = []string{models.AppointmentStatusPending, models.AppointmentStatusAccepted}

func (r *appointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.Where("id = ?", id).
		Preload("Doctor").
		Preload("Patient").
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) ListActiveInRange(doctorID uint, from, to time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.
		Where("doctor_id = ? AND status IN ?", doctorID, activeStatuses).
		Where("scheduled_at < ? AND DATE_ADD(scheduled_at, INTERVAL duration_minutes MINUTE) > ?", to, from).
		Order("scheduled_at ASC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListByPatient(patientID uint, from time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.
		Where("patient_id = ? AND scheduled_at >= ?", patientID, from).
		Preload("Doctor").
		Order("scheduled_at ASC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) ListActiveBetween(from, to time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.
		Where("status IN ? AND scheduled_at >= ? AND scheduled_at < ?", activeStatuses, from, to).
		Preload("Doctor").
		Preload("Patient").
		Order("scheduled_at ASC").
		Find(&appts).Error
	return appts, err
}

func (r *appointmentRepository) CreateIfSlotFree(appt *models.Appointment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockedConflictCheck(tx, appt.DoctorID, 0, appt.ScheduledAt, appt.EndsAt()); err != nil {
			return err
		}

		if err := tx.Create(appt).Error; err != nil {
			return err
		}

		event := models.AppointmentStatusEvent{
			AppointmentID: appt.ID,
			ToStatus:      appt.Status,
			Reason:        appt.Reason,
		}
		return tx.Create(&event).Error
	})
}

func (r *appointmentRepository) RescheduleIfSlotFree(id uint, newDoctorID uint, newStart time.Time, newDurationMinutes int, event models.AppointmentStatusEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		newEnd := newStart.Add(time.Duration(newDurationMinutes) * time.Minute)
		if err := lockedConflictCheck(tx, newDoctorID, id, newStart, newEnd); err != nil {
			return err
		}

		// The status guard keeps a concurrent cancel/complete from being
		// overwritten: a terminal appointment must never come back as
		// accepted.
		result := tx.Model(&models.Appointment{}).
			Where("id = ? AND status IN ?", id, activeStatuses).
			Updates(map[string]interface{}{
				"doctor_id":        newDoctorID,
				"scheduled_at":     newStart,
				"duration_minutes": newDurationMinutes,
				"status":           event.ToStatus,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Appointment{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		event.AppointmentID = id
		return tx.Create(&event).Error
	})
}

// lockedConflictCheck locks the doctor's active appointments overlapping
// [start, end) and fails with ErrConflict if any exist. excludeID skips
// the appointment being rescheduled.
func lockedConflictCheck(tx *gorm.DB, doctorID, excludeID uint, start, end time.Time) error {
	var existing []models.Appointment
	query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doctor_id = ? AND status IN ?", doctorID, activeStatuses).
		Where("scheduled_at < ? AND DATE_ADD(scheduled_at, INTERVAL duration_minutes MINUTE) > ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Find(&existing).Error; err != nil {
		return err
	}
	if scheduling.Conflicts(start, end, existing) {
		return ErrConflict
	}
	return nil
}

func (r *appointmentRepository) TransitionStatus(id uint, fromStatus, toStatus, reason string, actorUserID *uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Update("status", toStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Either the appointment is gone or someone else moved it.
			var count int64
			if err := tx.Model(&models.Appointment{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		event := models.AppointmentStatusEvent{
			AppointmentID: id,
			FromStatus:    fromStatus,
			ToStatus:      toStatus,
			Reason:        reason,
			ActorUserID:   actorUserID,
		}
		return tx.Create(&event).Error
	})
}

func (r *appointmentRepository) UpdateRoomProjection(id uint, roomID *uint, roomName, roomColor string, reconciledAt time.Time) error {
	return r.db.Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"room_id":            roomID,
			"room_name":          roomName,
			"room_color":         roomColor,
			"room_reconciled_at": reconciledAt,
		}).Error
}
