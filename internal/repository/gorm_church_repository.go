package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
)

// GormChurchRepository implements ChurchRepository on the shared gorm instance
type GormChurchRepository struct {
	db *gorm.DB
}

// NewGormChurchRepository creates a church repository backed by gorm
func NewGormChurchRepository(db *gorm.DB) *GormChurchRepository {
	return &GormChurchRepository{db: db}
}

// GetByID retrieves a church by ID
func (r *GormChurchRepository) GetByID(ctx context.Context, id uint) (*model.Church, error) {
	var church model.Church
	if result := r.db.WithContext(ctx).First(&church, id); result.Error != nil {
		return nil, result.Error
	}
	return &church, nil
}

// GetByCode retrieves a church by its public short code
func (r *GormChurchRepository) GetByCode(ctx context.Context, code string) (*model.Church, error) {
	var church model.Church
	if result := r.db.WithContext(ctx).Where("code = ?", code).First(&church); result.Error != nil {
		return nil, result.Error
	}
	return &church, nil
}

// SetParent persists parent reference, category and permission flags.
// All three columns change in one UPDATE so a concurrent reader never
// observes the parent set with the category or permissions missing.
func (r *GormChurchRepository) SetParent(ctx context.Context, childID uint, parentID uint, category hierarchy.Category, flags model.PermissionFlags) error {
	result := r.db.WithContext(ctx).Model(&model.Church{}).
		Where("id = ?", childID).
		Updates(map[string]interface{}{
			"parent_id":   parentID,
			"category":    category,
			"permissions": flags,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearParent removes the parent reference, optionally resetting the category
func (r *GormChurchRepository) ClearParent(ctx context.Context, childID uint, resetCategory bool, category hierarchy.Category) error {
	updates := map[string]interface{}{
		"parent_id": nil,
	}
	if resetCategory {
		updates["category"] = category
	}

	result := r.db.WithContext(ctx).Model(&model.Church{}).
		Where("id = ?", childID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPermissions replaces the stored permission flags
func (r *GormChurchRepository) SetPermissions(ctx context.Context, childID uint, flags model.PermissionFlags) error {
	result := r.db.WithContext(ctx).Model(&model.Church{}).
		Where("id = ?", childID).
		Update("permissions", flags)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListChildren retrieves all churches linked under the given parent
func (r *GormChurchRepository) ListChildren(ctx context.Context, parentID uint) ([]model.Church, error) {
	var children []model.Church
	if result := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("name").Find(&children); result.Error != nil {
		return nil, result.Error
	}
	return children, nil
}
