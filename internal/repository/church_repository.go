package repository

import (
	"context"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
)

// ChurchRepository defines the data access needed by the network services
type ChurchRepository interface {
	// GetByID retrieves a church by ID
	GetByID(ctx context.Context, id uint) (*model.Church, error)
	// GetByCode retrieves a church by its public short code
	GetByCode(ctx context.Context, code string) (*model.Church, error)
	// SetParent persists parent reference, category and permission flags in
	// a single atomic row update
	SetParent(ctx context.Context, childID uint, parentID uint, category hierarchy.Category, flags model.PermissionFlags) error
	// ClearParent removes the parent reference; when resetCategory is true
	// the category is reset to the given value in the same update
	ClearParent(ctx context.Context, childID uint, resetCategory bool, category hierarchy.Category) error
	// SetPermissions replaces the stored permission flags
	SetPermissions(ctx context.Context, childID uint, flags model.PermissionFlags) error
	// ListChildren retrieves all churches whose parent is the given church
	ListChildren(ctx context.Context, parentID uint) ([]model.Church, error)
}

// ServiceStatsRow is one row of a church's service-statistics history
type ServiceStatsRow struct {
	Date       string `json:"date"`
	Attendance int    `json:"attendance"`
	Visitors   int    `json:"visitors"`
	Converts   int    `json:"converts"`
}

// AggregateRepository defines the aggregate reads the permission gate can execute
type AggregateRepository interface {
	// MemberCount counts active members of a church
	MemberCount(ctx context.Context, churchID uint) (int64, error)
	// DepartmentCount counts active departments of a church
	DepartmentCount(ctx context.Context, churchID uint) (int64, error)
	// UpcomingEventCount counts events that have not started yet
	UpcomingEventCount(ctx context.Context, churchID uint) (int64, error)
	// ServiceStats returns the most recent service records, newest first
	ServiceStats(ctx context.Context, churchID uint, limit int) ([]ServiceStatsRow, error)
}
