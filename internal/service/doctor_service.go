package service

import (
	"fmt"
	"time"

	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"
)

func parseDate(s string) (time.Time, error) {
	return time.Parse(scheduling.DateFormat, s)
}

type DoctorService struct {
	doctorRepo         repository.DoctorRepository
	scheduleRepo       repository.ScheduleTemplateRepository
	auditRepo          repository.AuditRepository
	defaultSlotMinutes int
}

func NewDoctorService(
	doctorRepo repository.DoctorRepository,
	scheduleRepo repository.ScheduleTemplateRepository,
	auditRepo repository.AuditRepository,
	defaultSlotMinutes int,
) *DoctorService {
	return &DoctorService{
		doctorRepo:         doctorRepo,
		scheduleRepo:       scheduleRepo,
		auditRepo:          auditRepo,
		defaultSlotMinutes: defaultSlotMinutes,
	}
}

func (s *DoctorService) GetAllDoctors(includeInactive bool) ([]models.Doctor, error) {
	return s.doctorRepo.GetAll(includeInactive)
}

func (s *DoctorService) GetDoctorByID(id uint) (*models.Doctor, error) {
	return s.doctorRepo.GetByID(id)
}

func (s *DoctorService) CreateDoctor(doctor *models.Doctor, userID uint) error {
	if doctor.FullName == "" {
		return fmt.Errorf("%w: doctor name is required", ErrValidation)
	}
	if doctor.SlotDurationMinutes == 0 {
		doctor.SlotDurationMinutes = s.defaultSlotMinutes
	}
	if doctor.SlotDurationMinutes < 0 {
		return fmt.Errorf("%w: slot duration must be positive", ErrValidation)
	}

	if err := s.doctorRepo.Create(doctor); err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	userIDPtr := &userID
	details := fmt.Sprintf("Created doctor: %s (ID: %d, specialization: %s)", doctor.FullName, doctor.ID, doctor.Specialization)
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "doctor_create", details)

	return nil
}

func (s *DoctorService) UpdateDoctor(id uint, updates map[string]interface{}, userID uint) error {
	if _, err := s.doctorRepo.GetByID(id); err != nil {
		return err
	}

	if duration, ok := updates["slot_duration_minutes"]; ok {
		if n, ok := duration.(int); ok && n <= 0 {
			return fmt.Errorf("%w: slot duration must be positive", ErrValidation)
		}
	}

	if err := s.doctorRepo.Update(id, updates); err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "doctor_update", fmt.Sprintf("Updated doctor %d", id))

	return nil
}

// DeactivateDoctor disables booking against a doctor. Doctors are never
// deleted once appointments reference them.
func (s *DoctorService) DeactivateDoctor(id uint, userID uint) error {
	if err := s.doctorRepo.Deactivate(id); err != nil {
		return err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "doctor_deactivate", fmt.Sprintf("Deactivated doctor %d", id))

	return nil
}

func (s *DoctorService) ListTemplates(doctorID uint) ([]models.ScheduleTemplate, error) {
	if _, err := s.doctorRepo.GetByID(doctorID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListByDoctor(doctorID)
}

// AddTemplate validates and stores a working-hours template. A template
// is either weekly (weekday 1-7) or a date override, never both.
func (s *DoctorService) AddTemplate(template *models.ScheduleTemplate, userID uint) error {
	if _, err := s.doctorRepo.GetByID(template.DoctorID); err != nil {
		return err
	}

	if (template.Weekday == nil) == (template.Date == nil) {
		return fmt.Errorf("%w: exactly one of weekday or date must be set", ErrValidation)
	}
	if template.Weekday != nil && (*template.Weekday < 1 || *template.Weekday > 7) {
		return fmt.Errorf("%w: weekday must be 1 (Monday) through 7 (Sunday)", ErrValidation)
	}
	if template.Date != nil {
		if _, err := parseDate(*template.Date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
		}
	}
	if err := scheduling.ValidateWindow(template.StartTime, template.EndTime); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	switch template.Status {
	case models.TemplateStatusWorking, models.TemplateStatusVacation, models.TemplateStatusSickLeave:
	case "":
		template.Status = models.TemplateStatusWorking
	default:
		return fmt.Errorf("%w: unknown template status %q", ErrValidation, template.Status)
	}

	switch template.BillingType {
	case models.BillingTypeCommercial, models.BillingTypeCovered:
	case "":
		template.BillingType = models.BillingTypeCommercial
	default:
		return fmt.Errorf("%w: unknown billing type %q", ErrValidation, template.BillingType)
	}

	if err := s.scheduleRepo.Create(template); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	userIDPtr := &userID
	details := fmt.Sprintf("Added template %d for doctor %d (%s-%s)", template.ID, template.DoctorID, template.StartTime, template.EndTime)
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "template_create", details)

	return nil
}

func (s *DoctorService) DeleteTemplate(id uint, userID uint) error {
	if err := s.scheduleRepo.Delete(id); err != nil {
		return err
	}

	userIDPtr := &userID
	_ = s.auditRepo.CreateAuditLog(userIDPtr, "template_delete", fmt.Sprintf("Deleted template %d", id))

	return nil
}
