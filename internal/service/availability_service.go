package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinic-ops-backend/internal/cache"
	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"

	"github.com/sirupsen/logrus"
)

// DayAvailability is the per-day result of resolving a doctor's
// bookable slots.
type DayAvailability struct {
	Date            string            `json:"date"`
	HasAvailability bool              `json:"has_availability"`
	OpenSlotCount   int               `json:"open_slot_count"`
	Slots           []scheduling.Slot `json:"slots"`
	// HasTemplates distinguishes a doctor who does not work that day
	// from one who is fully booked. Both read as "no availability" to
	// the UI but matter for diagnostics.
	HasTemplates bool `json:"has_templates"`
}

type AvailabilityService struct {
	doctorRepo      repository.DoctorRepository
	scheduleRepo    repository.ScheduleTemplateRepository
	appointmentRepo repository.AppointmentRepository
	cache           cache.Client
	clock           scheduling.Clock
	cutoff          time.Duration
	cacheTTL        time.Duration
	location        *time.Location
	logger          *logrus.Logger
}

func NewAvailabilityService(
	doctorRepo repository.DoctorRepository,
	scheduleRepo repository.ScheduleTemplateRepository,
	appointmentRepo repository.AppointmentRepository,
	cacheClient cache.Client,
	clock scheduling.Clock,
	cutoffMinutes int,
	cacheTTL time.Duration,
	location *time.Location,
	logger *logrus.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		doctorRepo:      doctorRepo,
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		cache:           cacheClient,
		clock:           clock,
		cutoff:          time.Duration(cutoffMinutes) * time.Minute,
		cacheTTL:        cacheTTL,
		location:        location,
		logger:          logger,
	}
}

func availabilityCacheKey(doctorID uint, date string) string {
	return fmt.Sprintf("availability:%d:%s", doctorID, date)
}

// GetDoctorAvailability resolves a single doctor's bookable slots for
// one date. The result is advisory only: the lifecycle manager re-checks
// conflicts at commit time.
func (s *AvailabilityService) GetDoctorAvailability(ctx context.Context, doctorID uint, date time.Time) (*DayAvailability, error) {
	doctor, err := s.doctorRepo.GetByID(doctorID)
	if err != nil {
		return nil, err
	}

	templates, err := s.scheduleRepo.ListByDoctor(doctorID)
	if err != nil {
		return nil, err
	}

	return s.resolveDay(ctx, doctor, templates, date)
}

// GetWeekAvailability resolves seven days starting at weekStart for each
// doctor in doctorIDs.
func (s *AvailabilityService) GetWeekAvailability(ctx context.Context, doctorIDs []uint, weekStart time.Time) (map[uint][]DayAvailability, error) {
	result := make(map[uint][]DayAvailability, len(doctorIDs))

	for _, doctorID := range doctorIDs {
		doctor, err := s.doctorRepo.GetByID(doctorID)
		if err != nil {
			return nil, err
		}

		templates, err := s.scheduleRepo.ListByDoctor(doctorID)
		if err != nil {
			return nil, err
		}

		week := make([]DayAvailability, 0, 7)
		for i := 0; i < 7; i++ {
			day, err := s.resolveDay(ctx, doctor, templates, weekStart.AddDate(0, 0, i))
			if err != nil {
				return nil, err
			}
			week = append(week, *day)
		}
		result[doctorID] = week
	}

	return result, nil
}

func (s *AvailabilityService) resolveDay(ctx context.Context, doctor *models.Doctor, templates []models.ScheduleTemplate, date time.Time) (*DayAvailability, error) {
	date = date.In(s.location)
	dateStr := date.Format(scheduling.DateFormat)

	if cached := s.readCache(ctx, doctor.ID, dateStr); cached != nil {
		// Cached slots were filtered against the cutoff at write time;
		// the floor has moved since, so filter again before serving.
		s.applyCutoffFloor(cached)
		return cached, nil
	}

	day := &DayAvailability{Date: dateStr, Slots: []scheduling.Slot{}}

	tmpl := scheduling.PickTemplate(templates, date)
	if tmpl == nil {
		return day, nil
	}
	day.HasTemplates = true

	duration := doctor.SlotDurationMinutes
	candidates := scheduling.ExpandTemplate(tmpl, date, duration)
	if len(candidates) == 0 {
		return day, nil
	}

	dayStart := candidates[0].Start
	dayEnd := candidates[len(candidates)-1].End
	existing, err := s.appointmentRepo.ListActiveInRange(doctor.ID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	// A slot inside the booking cutoff must never be offered.
	floor := s.clock.Now().Add(s.cutoff)

	for _, slot := range candidates {
		if slot.Start.Before(floor) {
			continue
		}
		if scheduling.Conflicts(slot.Start, slot.End, existing) {
			continue
		}
		day.Slots = append(day.Slots, slot)
	}

	day.OpenSlotCount = len(day.Slots)
	day.HasAvailability = day.OpenSlotCount > 0

	s.writeCache(ctx, doctor.ID, dateStr, day)
	return day, nil
}

// applyCutoffFloor drops slots that have slipped inside the booking
// cutoff since the day was resolved and recomputes the counts.
func (s *AvailabilityService) applyCutoffFloor(day *DayAvailability) {
	floor := s.clock.Now().Add(s.cutoff)

	kept := day.Slots[:0]
	for _, slot := range day.Slots {
		if slot.Start.Before(floor) {
			continue
		}
		kept = append(kept, slot)
	}
	day.Slots = kept
	day.OpenSlotCount = len(kept)
	day.HasAvailability = day.OpenSlotCount > 0
}

func (s *AvailabilityService) readCache(ctx context.Context, doctorID uint, date string) *DayAvailability {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, availabilityCacheKey(doctorID, date))
	if err != nil {
		if err != cache.Miss {
			s.logger.WithError(err).Warn("Availability cache read failed")
		}
		return nil
	}

	var day DayAvailability
	if err := json.Unmarshal([]byte(raw), &day); err != nil {
		s.logger.WithError(err).Warn("Availability cache entry malformed")
		return nil
	}
	return &day
}

func (s *AvailabilityService) writeCache(ctx context.Context, doctorID uint, date string, day *DayAvailability) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(day)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, availabilityCacheKey(doctorID, date), string(raw), s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Availability cache write failed")
	}
}

// InvalidateDay drops the cached availability for a doctor/date after a
// booking state change.
func (s *AvailabilityService) InvalidateDay(ctx context.Context, doctorID uint, date time.Time) {
	if s.cache == nil {
		return
	}

	key := availabilityCacheKey(doctorID, date.In(s.location).Format(scheduling.DateFormat))
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"doctor_id": doctorID,
		}).Warn("Availability cache invalidation failed")
	}
}
