package models

import "time"

// RevenueEntry represents the revenue_entries table.
// At most one entry exists per appointment; the unique index on
// appointment_id is the attribution idempotency key.
type RevenueEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DoctorID      uint      `gorm:"not null;index" json:"doctor_id"`
	AppointmentID *uint     `gorm:"uniqueIndex" json:"appointment_id,omitempty"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Currency      string    `gorm:"size:8;default:'USD'" json:"currency"`
	BillingType   string    `gorm:"type:enum('commercial','covered');default:'commercial'" json:"billing_type"`
	Date          string    `gorm:"size:10;not null;index" json:"date"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// TableName specifies the table name for RevenueEntry model
func (RevenueEntry) TableName() string {
	return "revenue_entries"
}
