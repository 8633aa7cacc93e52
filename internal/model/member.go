package model

import (
	"time"

	"gorm.io/gorm"
)

// Member represents a church member stored in the database
type Member struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	ChurchID     uint           `json:"church_id" gorm:"index;not null"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null"`
	Email        string         `json:"email" gorm:"type:varchar(100)"`
	Phone        string         `json:"phone" gorm:"type:varchar(30)"`
	BirthDate    *time.Time     `json:"birth_date,omitempty"`
	Role         string         `json:"role" gorm:"type:varchar(50);default:'member'"` // 'member', 'leader', 'pastor', etc.
	Baptized     bool           `json:"baptized" gorm:"default:false"`
	DepartmentID *uint          `json:"department_id,omitempty" gorm:"index"`
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Department *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}
