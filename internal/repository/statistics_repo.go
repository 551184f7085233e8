package repository

import (
	"context"
	"fmt"
	"time"

	"vastustructural/internal/model"

	"gorm.io/gorm"
)

// StatisticsRepository aggregates projects created within [start, end].
type StatisticsRepository interface {
	StatusCounts(ctx context.Context, start, end time.Time) ([]model.StatusCount, error)
	TopPlans(ctx context.Context, start, end time.Time, limit int) ([]model.PlanRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) StatusCounts(ctx context.Context, start, end time.Time) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := GetDB(ctx, r.db).Table("projects").
		Select("status, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count projects by status: %w", err)
	}
	return counts, nil
}

func (r *statisticsRepository) TopPlans(ctx context.Context, start, end time.Time, limit int) ([]model.PlanRanking, error) {
	var rankings []model.PlanRanking
	if err := GetDB(ctx, r.db).Table("projects").
		Select("plan_type, plan_name, COUNT(*) as total_orders, COALESCE(SUM(amount), 0) as total_revenue").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("plan_type, plan_name").
		Order("total_revenue DESC, plan_type").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to rank plans: %w", err)
	}
	return rankings, nil
}
