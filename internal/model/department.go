package model

import (
	"time"

	"gorm.io/gorm"
)

// Department represents a ministry department within a church
type Department struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ChurchID    uint           `json:"church_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Description string         `json:"description" gorm:"type:text"`
	LeaderID    *uint          `json:"leader_id,omitempty" gorm:"index"` // Member who leads the department
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
