package model

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a one-off church event (conference, retreat, vigil)
type Event struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ChurchID    uint           `json:"church_id" gorm:"index;not null"`
	Title       string         `json:"title" gorm:"type:varchar(100);not null"`
	Location    string         `json:"location" gorm:"type:varchar(200)"`
	StartsAt    time.Time      `json:"starts_at" gorm:"index;not null"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
