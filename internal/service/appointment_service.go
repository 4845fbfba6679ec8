package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinic-ops-backend/internal/events"
	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/monitoring"
	"clinic-ops-backend/internal/notification"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppointmentService owns the appointment state machine:
// pending -> accepted -> completed, or -> cancelled from either.
// Every transition is validated before any write; notification, event
// publishing and revenue attribution are side effects that never block
// the transition itself.
type AppointmentService struct {
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	scheduleRepo    repository.ScheduleTemplateRepository
	auditRepo       repository.AuditRepository
	billing         *BillingService
	rooms           *RoomService
	availability    *AvailabilityService
	notifier        notification.Sender
	producer        events.Producer
	clock           scheduling.Clock
	cutoff          time.Duration
	location        *time.Location
	logger          *logrus.Logger
}

func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	scheduleRepo repository.ScheduleTemplateRepository,
	auditRepo repository.AuditRepository,
	billing *BillingService,
	rooms *RoomService,
	availability *AvailabilityService,
	notifier notification.Sender,
	producer events.Producer,
	clock scheduling.Clock,
	cutoffMinutes int,
	location *time.Location,
	logger *logrus.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		scheduleRepo:    scheduleRepo,
		auditRepo:       auditRepo,
		billing:         billing,
		rooms:           rooms,
		availability:    availability,
		notifier:        notifier,
		producer:        producer,
		clock:           clock,
		cutoff:          time.Duration(cutoffMinutes) * time.Minute,
		location:        location,
		logger:          logger,
	}
}

// CreateAppointmentInput carries the booking request.
type CreateAppointmentInput struct {
	DoctorID    uint
	PatientID   uint
	ScheduledAt time.Time
	Reason      string
	Note        string
}

// Create books an appointment. Availability shown to the user is
// advisory only, so the cutoff and conflict checks run again here at
// commit time; the write itself is conditional on the slot still being
// free.
func (s *AppointmentService) Create(ctx context.Context, input CreateAppointmentInput, userID uint) (*models.Appointment, error) {
	if input.Reason == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidation, ErrReasonRequired)
	}

	doctor, err := s.doctorRepo.GetByID(input.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, ErrDoctorInactive
	}

	patient, err := s.patientRepo.GetByID(input.PatientID)
	if err != nil {
		return nil, err
	}

	start := input.ScheduledAt.In(s.location)
	duration := doctor.SlotDurationMinutes

	billingType, err := s.validateSlot(doctor, start, duration)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		Code:            uuid.NewString(),
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		ScheduledAt:     start,
		DurationMinutes: duration,
		Status:          models.AppointmentStatusPending,
		Reason:          input.Reason,
		Note:            input.Note,
		BillingType:     billingType,
	}

	if err := s.appointmentRepo.CreateIfSlotFree(appt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			monitoring.BookingConflictsTotal.Inc()
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, err
	}

	monitoring.BookingsTotal.Inc()
	s.availability.InvalidateDay(ctx, doctor.ID, start)

	// Stamp the room projection; assignment changes later are handled
	// by read-time reconciliation.
	if err := s.rooms.ReconcileAppointmentRoom(appt); err != nil {
		s.logger.WithError(err).Warn("Failed to stamp room on new appointment")
	}

	s.logger.WithFields(logrus.Fields{
		"appointment_id": appt.ID,
		"doctor_id":      doctor.ID,
		"patient_id":     patient.ID,
		"scheduled_at":   start,
	}).Info("Appointment created")

	userIDPtr := &userID
	details := fmt.Sprintf("Booked appointment %d for patient %d with doctor %d at %s", appt.ID, patient.ID, doctor.ID, start.Format(time.RFC3339))
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "appointment_create", details)

	s.publishEvent(events.AppointmentCreated, appt)
	s.notifyPatient(patient, fmt.Sprintf("Your appointment with %s on %s is awaiting confirmation.", doctor.FullName, start.Format("Mon Jan 2 15:04")))

	return appt, nil
}

// validateSlot confirms the doctor works the requested window and the
// start is outside the booking cutoff. Returns the billing type of the
// covering template.
func (s *AppointmentService) validateSlot(doctor *models.Doctor, start time.Time, durationMinutes int) (string, error) {
	if start.Before(s.clock.Now().Add(s.cutoff)) {
		return "", ErrSlotInPast
	}

	templates, err := s.scheduleRepo.ListByDoctor(doctor.ID)
	if err != nil {
		return "", err
	}

	tmpl := scheduling.PickTemplate(templates, start)
	if tmpl == nil {
		return "", ErrDoctorNotWorking
	}

	// The request must land exactly on a slot boundary of the day's
	// expansion, which also guarantees the full duration fits inside
	// the working window.
	for _, slot := range scheduling.ExpandTemplate(tmpl, start, durationMinutes) {
		if slot.Start.Equal(start) {
			return tmpl.BillingType, nil
		}
	}
	return "", ErrDoctorNotWorking
}

// Confirm moves a pending appointment to accepted, notifying the
// patient and attempting revenue attribution.
func (s *AppointmentService) Confirm(ctx context.Context, id uint, userID uint) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.AppointmentStatusPending {
		return nil, ErrInvalidTransition
	}

	if err := s.transition(appt, models.AppointmentStatusAccepted, "", userID); err != nil {
		return nil, err
	}

	s.publishEvent(events.AppointmentAccepted, appt)
	s.notifyPatient(&appt.Patient, fmt.Sprintf("Your appointment on %s is confirmed.", appt.ScheduledAt.In(s.location).Format("Mon Jan 2 15:04")))
	s.attemptAttribution(appt)

	return appt, nil
}

// Reschedule moves an appointment to a new doctor and/or start time.
// The new slot is validated and conflict-checked exactly like a create;
// the old slot frees implicitly because conflict checks always query
// current state.
func (s *AppointmentService) Reschedule(ctx context.Context, id uint, newDoctorID *uint, newStart time.Time, userID uint) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !appt.IsActive() {
		return nil, ErrInvalidTransition
	}

	doctorID := appt.DoctorID
	if newDoctorID != nil {
		doctorID = *newDoctorID
	}

	doctor, err := s.doctorRepo.GetByID(doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsActive {
		return nil, ErrDoctorInactive
	}

	start := newStart.In(s.location)
	duration := doctor.SlotDurationMinutes

	if _, err := s.validateSlot(doctor, start, duration); err != nil {
		return nil, err
	}

	event := models.AppointmentStatusEvent{
		FromStatus:  appt.Status,
		ToStatus:    models.AppointmentStatusAccepted,
		Reason:      "rescheduled",
		ActorUserID: &userID,
	}
	if err := s.appointmentRepo.RescheduleIfSlotFree(id, doctorID, start, duration, event); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			monitoring.BookingConflictsTotal.Inc()
			return nil, ErrSlotNoLongerAvailable
		}
		return nil, err
	}

	s.availability.InvalidateDay(ctx, appt.DoctorID, appt.ScheduledAt)
	s.availability.InvalidateDay(ctx, doctorID, start)

	oldStart := appt.ScheduledAt
	appt.DoctorID = doctorID
	appt.ScheduledAt = start
	appt.DurationMinutes = duration
	appt.Status = models.AppointmentStatusAccepted

	s.logger.WithFields(logrus.Fields{
		"appointment_id": id,
		"from":           oldStart,
		"to":             start,
		"doctor_id":      doctorID,
	}).Info("Appointment rescheduled")

	userIDPtr := &userID
	details := fmt.Sprintf("Rescheduled appointment %d to %s (doctor %d)", id, start.Format(time.RFC3339), doctorID)
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "appointment_reschedule", details)

	s.publishEvent(events.AppointmentRescheduled, appt)
	s.notifyPatient(&appt.Patient, fmt.Sprintf("Your appointment was moved to %s.", start.Format("Mon Jan 2 15:04")))

	return appt, nil
}

// Cancel terminally cancels an appointment. A reason is mandatory.
// An already-recorded revenue entry is not reversed here; that is a
// reconciliation concern outside this engine.
func (s *AppointmentService) Cancel(ctx context.Context, id uint, reason string, userID uint) (*models.Appointment, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: %s", ErrValidation, ErrReasonRequired)
	}

	appt, err := s.appointmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !appt.IsActive() {
		return nil, ErrInvalidTransition
	}

	if err := s.transition(appt, models.AppointmentStatusCancelled, reason, userID); err != nil {
		return nil, err
	}

	s.availability.InvalidateDay(ctx, appt.DoctorID, appt.ScheduledAt)

	s.publishEvent(events.AppointmentCancelled, appt)
	s.notifyPatient(&appt.Patient, fmt.Sprintf("Your appointment on %s was cancelled: %s", appt.ScheduledAt.In(s.location).Format("Mon Jan 2 15:04"), reason))

	return appt, nil
}

// Complete terminally completes an accepted appointment, attributing
// revenue if no entry exists yet for it.
func (s *AppointmentService) Complete(ctx context.Context, id uint, userID uint) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.AppointmentStatusAccepted {
		return nil, ErrInvalidTransition
	}

	if err := s.transition(appt, models.AppointmentStatusCompleted, "", userID); err != nil {
		return nil, err
	}

	s.availability.InvalidateDay(ctx, appt.DoctorID, appt.ScheduledAt)

	s.publishEvent(events.AppointmentCompleted, appt)
	s.attemptAttribution(appt)

	return appt, nil
}

// GetByID returns an appointment with its room fields reconciled
// against the current specialist assignment.
func (s *AppointmentService) GetByID(id uint) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.rooms.ReconcileAppointmentRoom(appt); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"appointment_id": id,
		}).Warn("Room reconciliation failed on read")
	}

	return appt, nil
}

func (s *AppointmentService) ListForPatient(patientID uint) ([]models.Appointment, error) {
	if _, err := s.patientRepo.GetByID(patientID); err != nil {
		return nil, err
	}
	return s.appointmentRepo.ListByPatient(patientID, s.clock.Now())
}

// transition performs the optimistic status flip and audit write shared
// by confirm/cancel/complete.
func (s *AppointmentService) transition(appt *models.Appointment, toStatus, reason string, userID uint) error {
	userIDPtr := &userID
	if err := s.appointmentRepo.TransitionStatus(appt.ID, appt.Status, toStatus, reason, userIDPtr); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrInvalidTransition
		}
		return err
	}

	fromStatus := appt.Status
	appt.Status = toStatus

	s.logger.WithFields(logrus.Fields{
		"appointment_id": appt.ID,
		"from":           fromStatus,
		"to":             toStatus,
	}).Info("Appointment transitioned")

	details := fmt.Sprintf("Appointment %d: %s -> %s", appt.ID, fromStatus, toStatus)
	if reason != "" {
		details += " (" + reason + ")"
	}
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "appointment_"+toStatus, details)

	return nil
}

// attemptAttribution records revenue without ever failing the caller.
func (s *AppointmentService) attemptAttribution(appt *models.Appointment) {
	if _, err := s.billing.Attribute(appt); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"appointment_id": appt.ID,
		}).Error("Revenue attribution failed")
	}
}

// notifyPatient delivers fire-and-forget; failures are logged and
// counted, never returned.
func (s *AppointmentService) notifyPatient(patient *models.Patient, message string) {
	if s.notifier == nil || patient == nil || patient.Phone == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, patient.Phone, message); err != nil {
			monitoring.NotificationFailuresTotal.Inc()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"patient_id": patient.ID,
			}).Error("Notification delivery failed")
		}
	}()
}

func (s *AppointmentService) publishEvent(eventType string, appt *models.Appointment) {
	if s.producer == nil {
		return
	}

	event := events.AppointmentEvent{
		Type:          eventType,
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		ScheduledAt:   appt.ScheduledAt,
		OccurredAt:    s.clock.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.producer.SendMessage(ctx, []byte(fmt.Sprintf("appointment-%d", appt.ID)), payload); err != nil {
			s.logger.WithError(err).Error("Failed to publish appointment event")
		}
	}()
}
