package service

import (
	"errors"
	"testing"

	"clinic-ops-backend/internal/models"
)

func TestAssignSpecialistIsExclusive(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)

	room1 := &models.Room{Name: "Room 1", Color: "#ff0000"}
	room2 := &models.Room{Name: "Room 2", Color: "#00ff00"}
	if err := env.roomService.CreateRoom(room1, 1); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := env.roomService.CreateRoom(room2, 1); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	if err := env.roomService.AssignSpecialist(room1.ID, doctor.ID, 1); err != nil {
		t.Fatalf("AssignSpecialist: %v", err)
	}

	resolved, err := env.roomService.ResolveRoomForDoctor(doctor.ID)
	if err != nil || resolved == nil || resolved.ID != room1.ID {
		t.Fatalf("expected doctor in room1, got %+v err=%v", resolved, err)
	}

	// Moving to room2 clears room1 in the same operation.
	if err := env.roomService.AssignSpecialist(room2.ID, doctor.ID, 1); err != nil {
		t.Fatalf("AssignSpecialist(room2): %v", err)
	}

	resolved, err = env.roomService.ResolveRoomForDoctor(doctor.ID)
	if err != nil || resolved == nil || resolved.ID != room2.ID {
		t.Fatalf("expected doctor in room2, got %+v err=%v", resolved, err)
	}

	r1, _ := env.rooms.GetByID(room1.ID)
	if r1.AssignedDoctorID != nil {
		t.Error("room1 still has an assigned doctor")
	}
}

func TestAssignSpecialistRejectsInactiveDoctor(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)
	_ = env.doctors.Deactivate(doctor.ID)

	room := &models.Room{Name: "Room 1"}
	if err := env.roomService.CreateRoom(room, 1); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	err := env.roomService.AssignSpecialist(room.ID, doctor.ID, 1)
	if !errors.Is(err, ErrDoctorInactive) {
		t.Errorf("AssignSpecialist error = %v, want ErrDoctorInactive", err)
	}
}

func TestResolveRoomForUnassignedDoctor(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)

	room, err := env.roomService.ResolveRoomForDoctor(doctor.ID)
	if err != nil {
		t.Fatalf("ResolveRoomForDoctor: %v", err)
	}
	if room != nil {
		t.Errorf("expected nil room, got %+v", room)
	}
}

func TestReconcileAppointmentRoomTracksReassignment(t *testing.T) {
	env := newTestEnv(sundayNoon)
	doctor := env.addDoctor("Dr. Adams", nil)
	patient := env.addPatient("Alice", "")
	env.addWeeklyTemplate(doctor.ID, 1, "09:00", "11:00")

	room1 := &models.Room{Name: "Room 1", Color: "#ff0000"}
	room2 := &models.Room{Name: "Room 2", Color: "#00ff00"}
	_ = env.roomService.CreateRoom(room1, 1)
	_ = env.roomService.CreateRoom(room2, 1)
	if err := env.roomService.AssignSpecialist(room1.ID, doctor.ID, 1); err != nil {
		t.Fatalf("AssignSpecialist: %v", err)
	}

	appt := mustCreate(t, env, doctor.ID, patient.ID, mondayAt(9, 0))
	if appt.RoomName != "Room 1" {
		t.Errorf("room stamped at creation = %q, want Room 1", appt.RoomName)
	}

	// Specialist moves; the next read reflects the new room.
	if err := env.roomService.AssignSpecialist(room2.ID, doctor.ID, 1); err != nil {
		t.Fatalf("AssignSpecialist(room2): %v", err)
	}

	fresh, err := env.service.GetByID(appt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fresh.RoomName != "Room 2" || fresh.RoomColor != "#00ff00" {
		t.Errorf("reconciled room = %q/%q, want Room 2/#00ff00", fresh.RoomName, fresh.RoomColor)
	}
	if fresh.RoomID == nil || *fresh.RoomID != room2.ID {
		t.Errorf("reconciled room id = %v, want %d", fresh.RoomID, room2.ID)
	}
	if fresh.RoomReconciledAt == nil {
		t.Error("expected RoomReconciledAt to be stamped")
	}

	// Unassigning clears the projection on the next read.
	if err := env.roomService.UnassignSpecialist(room2.ID, 1); err != nil {
		t.Fatalf("UnassignSpecialist: %v", err)
	}
	fresh, err = env.service.GetByID(appt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fresh.RoomID != nil || fresh.RoomName != "" {
		t.Errorf("expected cleared room projection, got %q (%v)", fresh.RoomName, fresh.RoomID)
	}
}

func TestCreateRoomRequiresName(t *testing.T) {
	env := newTestEnv(sundayNoon)
	err := env.roomService.CreateRoom(&models.Room{}, 1)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("CreateRoom error = %v, want ErrValidation", err)
	}
}
