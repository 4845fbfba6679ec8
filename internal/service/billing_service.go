package service

import (
	"time"

	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/monitoring"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"

	"github.com/sirupsen/logrus"
)

// BillingService derives revenue entries from appointments. Attribution
// is best-effort: the lifecycle transition that triggers it never fails
// because billing did.
type BillingService struct {
	revenueRepo  repository.RevenueRepository
	scheduleRepo repository.ScheduleTemplateRepository
	doctorRepo   repository.DoctorRepository
	location     *time.Location
	logger       *logrus.Logger
}

func NewBillingService(
	revenueRepo repository.RevenueRepository,
	scheduleRepo repository.ScheduleTemplateRepository,
	doctorRepo repository.DoctorRepository,
	location *time.Location,
	logger *logrus.Logger,
) *BillingService {
	return &BillingService{
		revenueRepo:  revenueRepo,
		scheduleRepo: scheduleRepo,
		doctorRepo:   doctorRepo,
		location:     location,
		logger:       logger,
	}
}

// Attribute records a revenue entry for the appointment. The fee comes
// from the schedule template covering the appointment's slot: covered
// visits bill zero (a valid, intentional entry), commercial visits bill
// the template's fee override or the doctor's default fee. Without a
// covering template the doctor's default fee is used; without that
// either, no entry is created.
//
// At most one entry ever exists per appointment: a second call for the
// same id returns (nil, nil).
func (s *BillingService) Attribute(appt *models.Appointment) (*models.RevenueEntry, error) {
	doctor, err := s.doctorRepo.GetByID(appt.DoctorID)
	if err != nil {
		return nil, err
	}

	templates, err := s.scheduleRepo.ListByDoctor(appt.DoctorID)
	if err != nil {
		return nil, err
	}

	localStart := appt.ScheduledAt.In(s.location)
	tmpl := scheduling.FindCoveringTemplate(templates, localStart)

	var amount float64
	billingType := models.BillingTypeCommercial

	switch {
	case tmpl != nil && tmpl.BillingType == models.BillingTypeCovered:
		billingType = models.BillingTypeCovered
		amount = 0
	case tmpl != nil && tmpl.FeeOverride != nil:
		amount = *tmpl.FeeOverride
	case doctor.ConsultationFee != nil:
		amount = *doctor.ConsultationFee
	default:
		// No fee source at all: attribution is skipped, not failed.
		s.logger.WithFields(logrus.Fields{
			"appointment_id": appt.ID,
			"doctor_id":      appt.DoctorID,
		}).Warn("No fee configured, skipping revenue attribution")
		return nil, nil
	}

	appointmentID := appt.ID
	entry := &models.RevenueEntry{
		DoctorID:      appt.DoctorID,
		AppointmentID: &appointmentID,
		Amount:        amount,
		Currency:      doctor.Currency,
		BillingType:   billingType,
		Date:          localStart.Format(scheduling.DateFormat),
	}

	created, err := s.revenueRepo.CreateIfAbsent(entry)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}

	monitoring.RevenueEntriesTotal.Inc()
	s.logger.WithFields(logrus.Fields{
		"appointment_id": appt.ID,
		"doctor_id":      appt.DoctorID,
		"amount":         amount,
		"billing_type":   billingType,
	}).Info("Revenue entry recorded")

	return entry, nil
}

// RevenueReport sums entries for a doctor (or all doctors) over a date
// range.
type RevenueReport struct {
	Entries []models.RevenueEntry `json:"entries"`
	Total   float64               `json:"total"`
}

func (s *BillingService) ListRevenue(doctorID *uint, from, to string) (*RevenueReport, error) {
	entries, err := s.revenueRepo.ListByRange(doctorID, from, to)
	if err != nil {
		return nil, err
	}

	report := &RevenueReport{Entries: entries}
	for _, entry := range entries {
		report.Total += entry.Amount
	}
	return report, nil
}
