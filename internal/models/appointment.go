package models

import "time"

// Appointment status values. An appointment holds exactly one current
// status; the full transition history lives in appointment_status_events.
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusAccepted  = "accepted"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// Appointment represents the appointments table.
// Appointments are never hard-deleted; cancellation is a status.
type Appointment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Code      string `gorm:"size:36;uniqueIndex" json:"code"`
	PatientID uint   `gorm:"not null;index" json:"patient_id"`
	DoctorID  uint   `gorm:"not null;index" json:"doctor_id"`

	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	Status string `gorm:"type:enum('pending','accepted','completed','cancelled');default:'pending';index" json:"status"`
	Reason string `gorm:"size:500" json:"reason"`
	Note   string `gorm:"type:text" json:"note,omitempty"`

	BillingType string `gorm:"type:enum('commercial','covered');default:'commercial'" json:"billing_type"`

	// Room fields are a cached projection refreshed by the room resolver.
	RoomID           *uint      `json:"room_id,omitempty"`
	RoomName         string     `gorm:"size:100" json:"room_name,omitempty"`
	RoomColor        string     `gorm:"size:16" json:"room_color,omitempty"`
	RoomReconciledAt *time.Time `json:"room_reconciled_at,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// TableName specifies the table name for Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// EndsAt returns the exclusive end of the occupied interval.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsActive reports whether the appointment still occupies its slot.
// Cancelled and completed appointments never conflict with new bookings.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusCompleted
}

// AppointmentStatusEvent represents the appointment_status_events table,
// an append-only log of lifecycle transitions.
type AppointmentStatusEvent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AppointmentID uint      `gorm:"not null;index" json:"appointment_id"`
	FromStatus    string    `gorm:"size:20" json:"from_status"`
	ToStatus      string    `gorm:"size:20;not null" json:"to_status"`
	Reason        string    `gorm:"size:500" json:"reason,omitempty"`
	ActorUserID   *uint     `json:"actor_user_id,omitempty"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for AppointmentStatusEvent model
func (AppointmentStatusEvent) TableName() string {
	return "appointment_status_events"
}
