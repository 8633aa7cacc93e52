package model

import (
	"time"

	"gorm.io/gorm"
)

// Denomination represents a church denomination (e.g. "Assembleia de Deus")
type Denomination struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Acronym     string         `json:"acronym" gorm:"type:varchar(20)"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
