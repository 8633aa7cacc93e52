package model

import (
	"time"

	"gorm.io/gorm"
)

// Plan represents a subscription plan a church can subscribe to
type Plan struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	PriceMonthly float64        `json:"price_monthly" gorm:"type:numeric(10,2);not null"`
	MaxMembers   int            `json:"max_members" gorm:"default:0"` // 0 means unlimited
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
