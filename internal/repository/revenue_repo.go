package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Revenue periods accepted by RevenueByPeriod, named after the DATE_TRUNC fields.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

// PeriodLayout formats a period start the same way in both stores.
const PeriodLayout = "2006-01-02"

type RevenueDataRow struct {
	Period       string `gorm:"column:period"`
	Orders       int    `gorm:"column:orders"`
	TotalRevenue int64  `gorm:"column:total_revenue"`
}

// RevenueRepository sums the amounts of projects created in [start, end] per period.
// Only paid orders become projects, so project amounts are collected revenue.
type RevenueRepository interface {
	RevenueByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]RevenueDataRow, error)
}

type revenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db}
}

func (r *revenueRepository) RevenueByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]RevenueDataRow, error) {
	query := `
		SELECT
			TO_CHAR(DATE_TRUNC($1, p.created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS period,
			COUNT(*) AS orders,
			COALESCE(SUM(p.amount), 0) AS total_revenue
		FROM projects p
		WHERE p.created_at >= $2
		  AND p.created_at <= $3
		GROUP BY period
		ORDER BY period
	`

	var rows []RevenueDataRow
	if err := GetDB(ctx, r.db).Raw(query, groupBy, start, end).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query revenue statistics: %w", err)
	}

	return rows, nil
}

// TruncatePeriod returns the UTC start of the period containing t. Weeks start on Monday.
func TruncatePeriod(t time.Time, groupBy string) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch groupBy {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodQuarter:
		month := ((int(t.Month())-1)/3)*3 + 1
		return time.Date(t.Year(), time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
