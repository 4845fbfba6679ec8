package service

import (
	"context"
	"io"
	"sync"
	"time"

	"clinic-ops-backend/internal/cache"
	"clinic-ops-backend/internal/models"
	"clinic-ops-backend/internal/repository"
	"clinic-ops-backend/internal/scheduling"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeCacheClient is an in-memory stand-in for the Redis availability
// cache. It ignores TTLs; tests control staleness through the clock.
type fakeCacheClient struct {
	mu    sync.Mutex
	store map[string]string
	sets  int
}

func newFakeCacheClient() *fakeCacheClient {
	return &fakeCacheClient{store: map[string]string{}}
}

func (c *fakeCacheClient) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.store[key]
	if !ok {
		return "", cache.Miss
	}
	return val, nil
}

func (c *fakeCacheClient) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	c.sets++
	return nil
}

func (c *fakeCacheClient) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.store, key)
	}
	return nil
}

func (c *fakeCacheClient) Close() error { return nil }

// In-memory repository fakes. Conditional-write semantics mirror the
// database implementations: conflict checks and status flips happen
// under one lock.

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uint]*models.Doctor
	nextID  uint
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: map[uint]*models.Doctor{}, nextID: 1}
}

func (r *fakeDoctorRepo) GetAll(includeInactive bool) ([]models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Doctor
	for _, d := range r.doctors {
		if d.IsActive || includeInactive {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDoctorRepo) GetByID(id uint) (*models.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDoctorRepo) Create(doctor *models.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor.ID = r.nextID
	r.nextID++
	copied := *doctor
	r.doctors[doctor.ID] = &copied
	return nil
}

func (r *fakeDoctorRepo) Update(id uint, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *fakeDoctorRepo) Deactivate(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsActive = false
	return nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uint]*models.Patient
	nextID   uint
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: map[uint]*models.Patient{}, nextID: 1}
}

func (r *fakePatientRepo) GetAll() ([]models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Patient
	for _, p := range r.patients {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePatientRepo) GetByID(id uint) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePatientRepo) Create(patient *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	patient.ID = r.nextID
	r.nextID++
	copied := *patient
	r.patients[patient.ID] = &copied
	return nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	templates []models.ScheduleTemplate
	nextID    uint
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{nextID: 1}
}

func (r *fakeScheduleRepo) ListByDoctor(doctorID uint) ([]models.ScheduleTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ScheduleTemplate
	// Overrides first, matching the database ordering.
	for _, t := range r.templates {
		if t.DoctorID == doctorID && t.Date != nil {
			out = append(out, t)
		}
	}
	for _, t := range r.templates {
		if t.DoctorID == doctorID && t.Date == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) GetByID(id uint) (*models.ScheduleTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.ID == id {
			copied := t
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeScheduleRepo) Create(template *models.ScheduleTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	template.ID = r.nextID
	r.nextID++
	r.templates = append(r.templates, *template)
	return nil
}

func (r *fakeScheduleRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.templates {
		if t.ID == id {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uint]*models.Appointment
	events       []models.AppointmentStatusEvent
	nextID       uint

	doctors  *fakeDoctorRepo
	patients *fakePatientRepo
}

func newFakeAppointmentRepo(doctors *fakeDoctorRepo, patients *fakePatientRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: map[uint]*models.Appointment{},
		nextID:       1,
		doctors:      doctors,
		patients:     patients,
	}
}

func (r *fakeAppointmentRepo) preload(appt models.Appointment) models.Appointment {
	if r.doctors != nil {
		if d, err := r.doctors.GetByID(appt.DoctorID); err == nil {
			appt.Doctor = *d
		}
	}
	if r.patients != nil {
		if p, err := r.patients.GetByID(appt.PatientID); err == nil {
			appt.Patient = *p
		}
	}
	return appt
}

func (r *fakeAppointmentRepo) GetByID(id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := r.preload(*appt)
	return &copied, nil
}

func (r *fakeAppointmentRepo) ListActiveInRange(doctorID uint, from, to time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.IsActive() && a.ScheduledAt.Before(to) && a.EndsAt().After(from) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByPatient(patientID uint, from time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.PatientID == patientID && !a.ScheduledAt.Before(from) {
			out = append(out, r.preload(*a))
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListActiveBetween(from, to time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appointments {
		if a.IsActive() && !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			out = append(out, r.preload(*a))
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) conflictLocked(doctorID, excludeID uint, start, end time.Time) bool {
	for _, a := range r.appointments {
		if a.ID == excludeID || a.DoctorID != doctorID || !a.IsActive() {
			continue
		}
		if a.ScheduledAt.Before(end) && a.EndsAt().After(start) {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) CreateIfSlotFree(appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictLocked(appt.DoctorID, 0, appt.ScheduledAt, appt.EndsAt()) {
		return repository.ErrConflict
	}
	appt.ID = r.nextID
	r.nextID++
	copied := *appt
	r.appointments[appt.ID] = &copied
	r.events = append(r.events, models.AppointmentStatusEvent{
		AppointmentID: appt.ID,
		ToStatus:      appt.Status,
		Reason:        appt.Reason,
	})
	return nil
}

func (r *fakeAppointmentRepo) RescheduleIfSlotFree(id uint, newDoctorID uint, newStart time.Time, newDurationMinutes int, event models.AppointmentStatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !appt.IsActive() {
		return repository.ErrConflict
	}
	newEnd := newStart.Add(time.Duration(newDurationMinutes) * time.Minute)
	if r.conflictLocked(newDoctorID, id, newStart, newEnd) {
		return repository.ErrConflict
	}
	appt.DoctorID = newDoctorID
	appt.ScheduledAt = newStart
	appt.DurationMinutes = newDurationMinutes
	appt.Status = event.ToStatus
	event.AppointmentID = id
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAppointmentRepo) TransitionStatus(id uint, fromStatus, toStatus, reason string, actorUserID *uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if appt.Status != fromStatus {
		return repository.ErrConflict
	}
	appt.Status = toStatus
	r.events = append(r.events, models.AppointmentStatusEvent{
		AppointmentID: id,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		Reason:        reason,
		ActorUserID:   actorUserID,
	})
	return nil
}

func (r *fakeAppointmentRepo) UpdateRoomProjection(id uint, roomID *uint, roomName, roomColor string, reconciledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	appt.RoomID = roomID
	appt.RoomName = roomName
	appt.RoomColor = roomColor
	appt.RoomReconciledAt = &reconciledAt
	return nil
}

func (r *fakeAppointmentRepo) eventsFor(id uint) []models.AppointmentStatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AppointmentStatusEvent
	for _, e := range r.events {
		if e.AppointmentID == id {
			out = append(out, e)
		}
	}
	return out
}

type fakeRoomRepo struct {
	mu     sync.Mutex
	rooms  map[uint]*models.Room
	nextID uint
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: map[uint]*models.Room{}, nextID: 1}
}

func (r *fakeRoomRepo) GetAll() ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Room
	for _, room := range r.rooms {
		if room.IsActive {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) GetByID(id uint) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok || !room.IsActive {
		return nil, repository.ErrNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *fakeRoomRepo) GetByAssignedDoctor(doctorID uint) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.IsActive && room.AssignedDoctorID != nil && *room.AssignedDoctorID == doctorID {
			copied := *room
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRoomRepo) Create(room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room.ID = r.nextID
	r.nextID++
	room.IsActive = true
	copied := *room
	r.rooms[room.ID] = &copied
	return nil
}

func (r *fakeRoomRepo) Update(id uint, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *fakeRoomRepo) AssignDoctor(roomID, doctorID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, room := range r.rooms {
		if room.AssignedDoctorID != nil && *room.AssignedDoctorID == doctorID {
			room.AssignedDoctorID = nil
		}
	}
	target.AssignedDoctorID = &doctorID
	return nil
}

func (r *fakeRoomRepo) Unassign(roomID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return repository.ErrNotFound
	}
	room.AssignedDoctorID = nil
	return nil
}

type fakeRevenueRepo struct {
	mu      sync.Mutex
	entries []models.RevenueEntry
	nextID  uint
}

func newFakeRevenueRepo() *fakeRevenueRepo {
	return &fakeRevenueRepo{nextID: 1}
}

func (r *fakeRevenueRepo) CreateIfAbsent(entry *models.RevenueEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.AppointmentID != nil {
		for _, e := range r.entries {
			if e.AppointmentID != nil && *e.AppointmentID == *entry.AppointmentID {
				return false, nil
			}
		}
	}
	entry.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, *entry)
	return true, nil
}

func (r *fakeRevenueRepo) ListByRange(doctorID *uint, from, to string) ([]models.RevenueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RevenueEntry
	for _, e := range r.entries {
		if doctorID != nil && e.DoctorID != *doctorID {
			continue
		}
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	actions []string
}

func (r *fakeAuditRepo) CreateAuditLog(userID *uint, action string, details string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return nil
}

// testEnv wires the services against the fakes with a frozen clock.
type testEnv struct {
	doctors      *fakeDoctorRepo
	patients     *fakePatientRepo
	schedules    *fakeScheduleRepo
	appts        *fakeAppointmentRepo
	rooms        *fakeRoomRepo
	revenue      *fakeRevenueRepo
	audit        *fakeAuditRepo
	clock        *scheduling.FixedClock
	availability *AvailabilityService
	billing      *BillingService
	roomService  *RoomService
	service      *AppointmentService
}

func newTestEnv(now time.Time) *testEnv {
	logger := discardLogger()

	env := &testEnv{
		doctors:   newFakeDoctorRepo(),
		patients:  newFakePatientRepo(),
		schedules: newFakeScheduleRepo(),
		rooms:     newFakeRoomRepo(),
		revenue:   newFakeRevenueRepo(),
		audit:     &fakeAuditRepo{},
		clock:     &scheduling.FixedClock{Instant: now},
	}
	env.appts = newFakeAppointmentRepo(env.doctors, env.patients)

	env.availability = NewAvailabilityService(
		env.doctors, env.schedules, env.appts,
		nil, env.clock, 60, time.Minute, time.UTC, logger,
	)
	env.billing = NewBillingService(env.revenue, env.schedules, env.doctors, time.UTC, logger)
	env.roomService = NewRoomService(env.rooms, env.doctors, env.appts, env.audit, env.clock, logger)
	env.service = NewAppointmentService(
		env.appts, env.doctors, env.patients, env.schedules, env.audit,
		env.billing, env.roomService, env.availability,
		nil, nil, env.clock, 60, time.UTC, logger,
	)
	return env
}

func (e *testEnv) addDoctor(name string, fee *float64) *models.Doctor {
	doctor := &models.Doctor{
		FullName:            name,
		SlotDurationMinutes: 30,
		ConsultationFee:     fee,
		Currency:            "USD",
		IsActive:            true,
	}
	_ = e.doctors.Create(doctor)
	return doctor
}

func (e *testEnv) addPatient(name, phone string) *models.Patient {
	patient := &models.Patient{FullName: name, Phone: phone, IsActive: true}
	_ = e.patients.Create(patient)
	return patient
}

func (e *testEnv) addWeeklyTemplate(doctorID uint, weekday int, start, end string) *models.ScheduleTemplate {
	tmpl := &models.ScheduleTemplate{
		DoctorID:    doctorID,
		Weekday:     &weekday,
		StartTime:   start,
		EndTime:     end,
		Status:      models.TemplateStatusWorking,
		BillingType: models.BillingTypeCommercial,
	}
	_ = e.schedules.Create(tmpl)
	return tmpl
}

func (e *testEnv) addOverride(doctorID uint, date, start, end, status string) *models.ScheduleTemplate {
	tmpl := &models.ScheduleTemplate{
		DoctorID:    doctorID,
		Date:        &date,
		StartTime:   start,
		EndTime:     end,
		Status:      status,
		BillingType: models.BillingTypeCommercial,
	}
	_ = e.schedules.Create(tmpl)
	return tmpl
}

func feeOf(v float64) *float64 { return &v }
