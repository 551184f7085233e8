package service

import (
	"context"
	"time"

	"vastustructural/internal/lifecycle"
	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

const topPlansLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error)
}

type statisticsService struct {
	stats       repository.StatisticsRepository
	contractors repository.ContractorRepository
}

func NewStatisticsService(stats repository.StatisticsRepository, contractors repository.ContractorRepository) StatisticsService {
	return &statisticsService{stats: stats, contractors: contractors}
}

// GetStatistics summarizes orders placed between startDate and endDate. The pending
// contractor count is not bounded by the range since it is a review queue.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error) {
	var response model.StatisticsResponse
	if endDate.Before(startDate) {
		return response, validationError("end_date must not be before start_date")
	}
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	counts, err := s.stats.StatusCounts(ctx, startDate, endDate)
	if err != nil {
		return response, err
	}
	byStatus := make(map[model.Status]model.StatusCount, len(counts))
	for _, c := range counts {
		byStatus[c.Status] = c
	}

	// One row per known status in lifecycle order, zeros included
	response.ByStatus = make([]model.StatusCount, 0, len(byStatus))
	for _, st := range lifecycle.KnownStatuses() {
		c := byStatus[st]
		c.Status = st
		c.Label = lifecycle.Metadata(st).Label
		response.ByStatus = append(response.ByStatus, c)

		response.TotalOrders += c.Count
		response.TotalRevenue += c.Amount
		if st == model.StatusCompleted {
			response.CompletedProjects = c.Count
		} else {
			response.ActiveProjects += c.Count
		}
	}

	response.TopPlans, err = s.stats.TopPlans(ctx, startDate, endDate, topPlansLimit)
	if err != nil {
		return response, err
	}

	_, pending, err := s.contractors.List(ctx, repository.ContractorFilter{Status: model.ContractorPending, Page: 1, Limit: 1})
	if err != nil {
		return response, err
	}
	response.PendingContractors = pending

	return response, nil
}
