package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/model"
)

// GormAggregateRepository implements AggregateRepository on the shared gorm instance
type GormAggregateRepository struct {
	db *gorm.DB
}

// NewGormAggregateRepository creates an aggregate repository backed by gorm
func NewGormAggregateRepository(db *gorm.DB) *GormAggregateRepository {
	return &GormAggregateRepository{db: db}
}

// MemberCount counts active members of a church
func (r *GormAggregateRepository) MemberCount(ctx context.Context, churchID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Member{}).
		Where("church_id = ? AND active = ?", churchID, true).
		Count(&count)
	return count, result.Error
}

// DepartmentCount counts active departments of a church
func (r *GormAggregateRepository) DepartmentCount(ctx context.Context, churchID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Department{}).
		Where("church_id = ? AND active = ?", churchID, true).
		Count(&count)
	return count, result.Error
}

// UpcomingEventCount counts events that have not started yet
func (r *GormAggregateRepository) UpcomingEventCount(ctx context.Context, churchID uint) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("church_id = ? AND starts_at > ?", churchID, time.Now()).
		Count(&count)
	return count, result.Error
}

// ServiceStats returns the most recent service records, newest first
func (r *GormAggregateRepository) ServiceStats(ctx context.Context, churchID uint, limit int) ([]ServiceStatsRow, error) {
	var records []model.ServiceRecord
	result := r.db.WithContext(ctx).
		Where("church_id = ?", churchID).
		Order("date DESC").
		Limit(limit).
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	rows := make([]ServiceStatsRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ServiceStatsRow{
			Date:       rec.Date.Format("2006-01-02"),
			Attendance: rec.Attendance,
			Visitors:   rec.Visitors,
			Converts:   rec.Converts,
		})
	}
	return rows, nil
}
