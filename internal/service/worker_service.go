package service

import (
	"context"
	"fmt"
	"time"

	"clinic-ops-backend/internal/notification"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"

	"github.com/sirupsen/logrus"
)

// WorkerService runs the background reminder sweep: patients with an
// active appointment roughly a day out get a notification.
type WorkerService struct {
	appointmentRepo repository.AppointmentRepository
	notifier        notification.Sender
	clock           scheduling.Clock
	interval        time.Duration
	location        *time.Location
	logger          *logrus.Logger

	// lastSweepEnd marks where the previous reminder window ended so
	// overlapping sweeps never remind the same appointment twice.
	lastSweepEnd time.Time
}

func NewWorkerService(
	appointmentRepo repository.AppointmentRepository,
	notifier notification.Sender,
	clock scheduling.Clock,
	interval time.Duration,
	location *time.Location,
	logger *logrus.Logger,
) *WorkerService {
	return &WorkerService{
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		clock:           clock,
		interval:        interval,
		location:        location,
		logger:          logger,
	}
}

// Start begins the reminder loop and blocks until ctx is cancelled.
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.lastSweepEnd = w.clock.Now().Add(24 * time.Hour)
	w.logger.WithFields(logrus.Fields{
		"interval": w.interval.String(),
	}).Info("Reminder worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep reminds patients for appointments starting in the window
// (lastSweepEnd, now+24h].
func (w *WorkerService) sweep(ctx context.Context) {
	windowEnd := w.clock.Now().Add(24 * time.Hour)
	if !windowEnd.After(w.lastSweepEnd) {
		return
	}

	appts, err := w.appointmentRepo.ListActiveBetween(w.lastSweepEnd, windowEnd)
	if err != nil {
		w.logger.WithError(err).Error("Reminder sweep failed to list appointments")
		return
	}
	w.lastSweepEnd = windowEnd

	for i := range appts {
		appt := &appts[i]
		if appt.Patient.Phone == "" {
			continue
		}

		message := fmt.Sprintf("Reminder: your appointment with %s is on %s.",
			appt.Doctor.FullName,
			appt.ScheduledAt.In(w.location).Format("Mon Jan 2 15:04"))

		if err := w.notifier.Send(ctx, appt.Patient.Phone, message); err != nil {
			w.logger.WithError(err).WithFields(logrus.Fields{
				"appointment_id": appt.ID,
			}).Error("Reminder delivery failed")
			continue
		}

		w.logger.WithFields(logrus.Fields{
			"appointment_id": appt.ID,
			"patient_id":     appt.PatientID,
		}).Info("Reminder sent")
	}
}
