package service

import (
	"context"
	"testing"
	"time"

	"clinic-ops-backend/internal/models"
)

// 2025-03-10 is a Monday.
var testMonday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// sundayNoon is comfortably outside the booking cutoff for any Monday slot.
var sundayNoon = time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

func mondayAt(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func slotStarts(day *DayAvailability) []string {
	var out []string
	for _, s := range day.Slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

func TestDayAvailabilityExpandsWeeklyTemplate(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", feeOf(150))
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "11:00")

	day, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}

	if !day.HasTemplates {
		t.Error("expected HasTemplates")
	}
	if !day.HasAvailability || day.OpenSlotCount != 4 {
		t.Fatalf("expected 4 open slots, got %d", day.OpenSlotCount)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30"}
	got := slotStarts(day)
	for i, w := range want {
		if got[i] != w {
			t.Errorf("slot %d: got %s, want %s", i, got[i], w)
		}
	}
}

func TestDayAvailabilityWithoutTemplates(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)

	day, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}

	if day.HasTemplates {
		t.Error("expected no templates for the day")
	}
	if day.HasAvailability || len(day.Slots) != 0 {
		t.Errorf("expected zero slots, got %d", len(day.Slots))
	}
}

func TestDayAvailabilityBookedSlotRemoved(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", feeOf(150))
	patient := env.addPatient("Alice", "")
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "11:00")

	if _, err := env.service.Create(context.Background(), CreateAppointmentInput{
		DoctorID:    doctor.ID,
		PatientID:   patient.ID,
		ScheduledAt: mondayAt(9, 30),
		Reason:      "checkup",
	}, 1); err != nil {
		t.Fatalf("Create: %v", err)
	}

	day, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}

	if day.OpenSlotCount != 3 {
		t.Fatalf("expected 3 open slots after booking, got %d", day.OpenSlotCount)
	}
	for _, s := range slotStarts(day) {
		if s == "09:30" {
			t.Error("booked slot 09:30 still offered")
		}
	}
}

func TestDayAvailabilityCutoffExcludesNearSlots(t *testing.T) {
	env := newTestEnv(mondayAt(8, 30))
	doctor := env.addDoctor("Dr. Adams", nil)
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "11:00")

	day, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}

	// Cutoff is 60 minutes: 09:00 is inside it, 09:30 is exactly on the
	// boundary and stays bookable.
	got := slotStarts(day)
	want := []string{"09:30", "10:00", "10:30"}
	if len(got) != len(want) {
		t.Fatalf("expected slots %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCachedAvailabilityRespectsCutoff(t *testing.T) {
	env := newTestEnv(mondayAt(7, 0))
	doctor := env.addDoctor("Dr. Adams", nil)
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "11:00")

	cacheClient := newFakeCacheClient()
	svc := NewAvailabilityService(
		env.doctors, env.schedules, env.appts,
		cacheClient, env.clock,
		60, time.Minute, time.UTC, discardLogger(),
	)

	day, err := svc.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}
	if day.OpenSlotCount != 4 {
		t.Fatalf("expected 4 open slots at 07:00, got %d", day.OpenSlotCount)
	}
	if cacheClient.sets != 1 {
		t.Fatalf("expected the resolved day to be cached once, got %d writes", cacheClient.sets)
	}

	// The cache entry is still warm, but 09:00 and 09:30 have slipped
	// inside the 60-minute cutoff since it was written.
	env.clock.Instant = mondayAt(8, 45)

	day, err = svc.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}
	got := slotStarts(day)
	want := []string{"10:00", "10:30"}
	if len(got) != len(want) {
		t.Fatalf("expected slots %v from warm cache, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, got[i], want[i])
		}
	}
	if day.OpenSlotCount != 2 || !day.HasAvailability {
		t.Errorf("counts not recomputed: open=%d available=%v", day.OpenSlotCount, day.HasAvailability)
	}
	if cacheClient.sets != 1 {
		t.Errorf("second read should be served from cache, got %d writes", cacheClient.sets)
	}

	// Once every slot is inside the cutoff the day reads as unavailable.
	env.clock.Instant = mondayAt(10, 1)

	day, err = svc.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}
	if day.HasAvailability || day.OpenSlotCount != 0 || len(day.Slots) != 0 {
		t.Errorf("expected no bookable slots at 10:01, got %v", slotStarts(day))
	}
}

func TestDayAvailabilityOverrideBeatsWeekly(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "17:00")
	env.addOverride(doctor.ID, "2025-03-10", "00:00", "00:00", models.TemplateStatusVacation)

	day, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}

	if !day.HasTemplates {
		t.Error("a vacation override still counts as a template for the day")
	}
	if day.HasAvailability || len(day.Slots) != 0 {
		t.Errorf("vacation day should have no slots, got %d", len(day.Slots))
	}
}

func TestWeekAvailabilityCoversSevenDays(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "11:00")
	env.addWeeklyTemplate(doctor.ID, 3, "14:00", "16:00")

	week, err := env.availability.GetWeekAvailability(context.Background(), []uint{doctor.ID}, testMonday)
	if err != nil {
		t.Fatalf("GetWeekAvailability: %v", err)
	}

	days := week[doctor.ID]
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if !days[0].HasAvailability {
		t.Error("Monday should be available")
	}
	if days[1].HasAvailability {
		t.Error("Tuesday has no template and should be empty")
	}
	if !days[2].HasAvailability {
		t.Error("Wednesday should be available")
	}
	if days[0].Date != "2025-03-10" || days[6].Date != "2025-03-16" {
		t.Errorf("unexpected date range: %s .. %s", days[0].Date, days[6].Date)
	}
}

func TestDayAvailabilityFullyBookedStillHasTemplates(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)
	patient := env.addPatient("Alice", "")
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "10:00")

	for _, start := range []time.Time{mondayAt(9, 0), mondayAt(9, 30)} {
		if _, err := env.service.Create(context.Background(), CreateAppointmentInput{
			DoctorID:    doctor.ID,
			PatientID:   patient.ID,
			ScheduledAt: start,
			Reason:      "checkup",
		}, 1); err != nil {
			t.Fatalf("Create at %s: %v", start, err)
		}
	}

	day, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, testMonday)
	if err != nil {
		t.Fatalf("GetDoctorAvailability: %v", err)
	}

	if day.HasAvailability {
		t.Error("fully booked day should have no availability")
	}
	if !day.HasTemplates {
		t.Error("fully booked is not the same as not working")
	}
}
