package service

import (
	"errors"
	"fmt"

	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"

	"github.com/sirupsen/logrus"
)

type RoomService struct {
	roomRepo        repository.RoomRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	auditRepo       repository.AuditRepository
	clock           scheduling.Clock
	logger          *logrus.Logger
}

func NewRoomService(
	roomRepo repository.RoomRepository,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	auditRepo repository.AuditRepository,
	clock scheduling.Clock,
	logger *logrus.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:        roomRepo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		auditRepo:       auditRepo,
		clock:           clock,
		logger:          logger,
	}
}

func (s *RoomService) GetAllRooms() ([]models.Room, error) {
	return s.roomRepo.GetAll()
}

func (s *RoomService) CreateRoom(room *models.Room, userID uint) error {
	if room.Name == "" {
		return fmt.Errorf("%w: room name is required", ErrValidation)
	}

	if err := s.roomRepo.Create(room); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	userIDPtr := &userID
	details := fmt.Sprintf("Created room: %s (ID: %d)", room.Name, room.ID)
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "room_create", details)

	return nil
}

// AssignSpecialist makes the doctor the room's assigned specialist.
// A doctor occupies at most one room, so any previous assignment is
// cleared in the same write.
func (s *RoomService) AssignSpecialist(roomID, doctorID uint, userID uint) error {
	doctor, err := s.doctorRepo.GetByID(doctorID)
	if err != nil {
		return err
	}
	if !doctor.IsActive {
		return ErrDoctorInactive
	}

	if err := s.roomRepo.AssignDoctor(roomID, doctorID); err != nil {
		return err
	}

	userIDPtr := &userID
	details := fmt.Sprintf("Assigned doctor %d (%s) to room %d", doctorID, doctor.FullName, roomID)
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "room_assign", details)

	return nil
}

func (s *RoomService) UnassignSpecialist(roomID uint, userID uint) error {
	if err := s.roomRepo.Unassign(roomID); err != nil {
		return err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "room_unassign", fmt.Sprintf("Cleared specialist for room %d", roomID))

	return nil
}

// ResolveRoomForDoctor returns the doctor's current room, or nil when
// none is assigned.
func (s *RoomService) ResolveRoomForDoctor(doctorID uint) (*models.Room, error) {
	room, err := s.roomRepo.GetByAssignedDoctor(doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ReconcileAppointmentRoom refreshes the cached room fields on an
// appointment from the current assignment. Appointments snapshot room
// identity at creation time and assignments drift, so reads funnel
// through here.
func (s *RoomService) ReconcileAppointmentRoom(appt *models.Appointment) error {
	room, err := s.ResolveRoomForDoctor(appt.DoctorID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	var roomID *uint
	roomName, roomColor := "", ""
	if room != nil {
		roomID = &room.ID
		roomName = room.Name
		roomColor = room.Color
	}

	if err := s.appointmentRepo.UpdateRoomProjection(appt.ID, roomID, roomName, roomColor, now); err != nil {
		return err
	}

	appt.RoomID = roomID
	appt.RoomName = roomName
	appt.RoomColor = roomColor
	appt.RoomReconciledAt = &now
	return nil
}
