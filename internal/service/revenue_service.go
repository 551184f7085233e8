package service

import (
	"context"
	"time"

	"vastustructural/internal/catalog"
	"vastustructural/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RevenueDataPoint struct {
	Period       string          `json:"period"`
	Orders       int             `json:"orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TaxableValue decimal.Decimal `json:"taxable_value"`
	GSTCollected decimal.Decimal `json:"gst_collected"`
}

type RevenueFilter struct {
	GroupBy   string // week, month, quarter, year
	StartDate time.Time
	EndDate   time.Time
}

// --- Interface ---

type RevenueService interface {
	GetRevenueStatistics(ctx context.Context, filter RevenueFilter) ([]RevenueDataPoint, error)
}

type revenueService struct {
	repo  repository.RevenueRepository
	plans *catalog.Catalog
}

func NewRevenueService(repo repository.RevenueRepository, plans *catalog.Catalog) RevenueService {
	return &revenueService{repo: repo, plans: plans}
}

// --- Implementation ---

func (s *revenueService) GetRevenueStatistics(ctx context.Context, filter RevenueFilter) ([]RevenueDataPoint, error) {
	groupBy := filter.GroupBy
	switch groupBy {
	case repository.PeriodWeek, repository.PeriodMonth, repository.PeriodQuarter, repository.PeriodYear:
		// valid
	case "":
		groupBy = repository.PeriodMonth
	default:
		return nil, validationError("group_by must be one of: week, month, quarter, year")
	}
	if filter.EndDate.Before(filter.StartDate) {
		return nil, validationError("end_date must not be before start_date")
	}

	rows, err := s.repo.RevenueByPeriod(ctx, groupBy, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, err
	}

	result := make([]RevenueDataPoint, 0, len(rows))
	for _, r := range rows {
		split := s.plans.Split(r.TotalRevenue)
		result = append(result, RevenueDataPoint{
			Period:       r.Period,
			Orders:       r.Orders,
			TotalRevenue: split.Total,
			TaxableValue: split.Base,
			GSTCollected: split.GST,
		})
	}

	return result, nil
}
