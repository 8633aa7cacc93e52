package model

import (
	"time"

	"gorm.io/gorm"
)

// Schedule represents a recurring service or meeting of a church
type Schedule struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ChurchID    uint           `json:"church_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(100);not null"`
	Weekday     time.Weekday   `json:"weekday" gorm:"not null"`
	StartTime   string         `json:"start_time" gorm:"type:varchar(5)"` // "19:30"
	Description string         `json:"description" gorm:"type:text"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
