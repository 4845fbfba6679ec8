package models

import "time"

// Template status values
const (
	TemplateStatusWorking   = "working"
	TemplateStatusVacation  = "vacation"
	TemplateStatusSickLeave = "sick_leave"
)

// Billing type values
const (
	BillingTypeCommercial = "commercial"
	BillingTypeCovered    = "covered"
)

// ScheduleTemplate represents the schedule_templates table.
// A template is either weekly (Weekday set, Date nil) or a date-specific
// override (Date set, Weekday nil). A date override takes precedence over
// the weekly template for that date.
type ScheduleTemplate struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	DoctorID uint `gorm:"not null;index" json:"doctor_id"`

	// Weekday is ISO 1 (Monday) through 7 (Sunday) for weekly templates.
	Weekday *int `gorm:"index" json:"weekday,omitempty"`
	// Date is YYYY-MM-DD for date-specific overrides.
	Date *string `gorm:"size:10;index" json:"date,omitempty"`

	// StartTime and EndTime are clinic-local wall clock, HH:MM.
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	Status      string   `gorm:"type:enum('working','vacation','sick_leave');default:'working'" json:"status"`
	BillingType string   `gorm:"type:enum('commercial','covered');default:'commercial'" json:"billing_type"`
	FeeOverride *float64 `json:"fee_override,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// TableName specifies the table name for ScheduleTemplate model
func (ScheduleTemplate) TableName() string {
	return "schedule_templates"
}

// IsOverride reports whether the template is a date-specific override.
func (t *ScheduleTemplate) IsOverride() bool {
	return t.Date != nil
}
