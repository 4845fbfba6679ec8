package models

import "time"

// Doctor represents the doctors table
type Doctor struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	FullName            string    `gorm:"size:255;not null" json:"full_name"`
	Specialization      string    `gorm:"size:100" json:"specialization"`
	AvatarURL           string    `gorm:"size:512" json:"avatar_url,omitempty"`
	SlotDurationMinutes int       `gorm:"default:30" json:"slot_duration_minutes"`
	ConsultationFee     *float64  `json:"consultation_fee,omitempty"`
	Currency            string    `gorm:"size:8;default:'USD'" json:"currency"`
	IsActive            bool      `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Doctor model
func (Doctor) TableName() string {
	return "doctors"
}
