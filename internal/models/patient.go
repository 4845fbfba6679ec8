package models

import "time"

// Patient represents the patients table
type Patient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for Patient model
func (Patient) TableName() string {
	return "patients"
}
