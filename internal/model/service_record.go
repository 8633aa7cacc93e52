package model

import (
	"time"

	"gorm.io/gorm"
)

// ServiceRecord represents the attendance record of one held service.
// These records form the service-statistics history a parent church may
// read through the permission gate.
type ServiceRecord struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ChurchID   uint           `json:"church_id" gorm:"index;not null"`
	ScheduleID *uint          `json:"schedule_id,omitempty" gorm:"index"`
	Date       time.Time      `json:"date" gorm:"index;not null"`
	Attendance int            `json:"attendance" gorm:"not null"`
	Visitors   int            `json:"visitors" gorm:"default:0"`
	Converts   int            `json:"converts" gorm:"default:0"`
	Notes      string         `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
