package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
)

// Church represents a church tenant stored in the database.
// This is the core of the multi-tenant architecture: every other record
// carries a ChurchID and is only visible within its own church, except
// through the permission-scoped read gate.
type Church struct {
	ID             uint               `json:"id" gorm:"primaryKey"`
	Name           string             `json:"name" gorm:"type:varchar(100);not null"`
	Code           string             `json:"code" gorm:"type:varchar(20);uniqueIndex;not null"` // Public short code used for network linking
	Email          string             `json:"email" gorm:"type:varchar(100)"`
	Phone          string             `json:"phone" gorm:"type:varchar(30)"`
	City           string             `json:"city" gorm:"type:varchar(100)"`
	Category       hierarchy.Category `json:"category" gorm:"type:varchar(50);not null"`
	ParentID       *uint              `json:"parent_id,omitempty" gorm:"index"` // Owning parent church in the network, nil when unlinked
	Permissions    PermissionFlags    `json:"permissions" gorm:"type:jsonb"`    // Capabilities shared with the parent
	DenominationID *uint              `json:"denomination_id,omitempty" gorm:"index"`
	PlanID         *uint              `json:"plan_id,omitempty" gorm:"index"`
	OwnerID        uint               `json:"owner_id" gorm:"index;not null"`
	Active         bool               `json:"active" gorm:"default:true"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	DeletedAt      gorm.DeletedAt     `json:"-" gorm:"index"`

	// Relations
	Denomination *Denomination `json:"denomination,omitempty" gorm:"foreignKey:DenominationID"`
	Plan         *Plan         `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// Linked reports whether the church has an active parent in the network
func (c *Church) Linked() bool {
	return c.ParentID != nil
}

// CategoryOrTop returns the stored category, defaulting to the top rank
// when the category was never set.
func (c *Church) CategoryOrTop() hierarchy.Category {
	if c.Category == "" {
		return hierarchy.Top()
	}
	return c.Category
}
