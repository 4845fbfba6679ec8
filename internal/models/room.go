package models

import "time"

// Room represents the rooms table.
// A doctor is the assigned specialist of at most one room at any time.
type Room struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Color            string    `gorm:"size:16" json:"color,omitempty"`
	AssignedDoctorID *uint     `gorm:"index" json:"assigned_doctor_id,omitempty"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	AssignedDoctor *Doctor `gorm:"foreignKey:AssignedDoctorID" json:"assigned_doctor,omitempty"`
}

// TableName specifies the table name for Room model
func (Room) TableName() string {
	return "rooms"
}
