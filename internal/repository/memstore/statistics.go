package memstore

import (
	"context"
	"sort"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

type statisticsRepository struct {
	projects *projectRepository
}

var _ repository.StatisticsRepository = (*statisticsRepository)(nil)

func (r *statisticsRepository) inRange(ctx context.Context, start, end time.Time) ([]model.Project, error) {
	all, err := r.projects.scan(ctx, indexID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if !p.CreatedAt.Before(start) && !p.CreatedAt.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *statisticsRepository) StatusCounts(ctx context.Context, start, end time.Time) ([]model.StatusCount, error) {
	projects, err := r.inRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byStatus := map[model.Status]*model.StatusCount{}
	var order []model.Status
	for _, p := range projects {
		c, ok := byStatus[p.Status]
		if !ok {
			c = &model.StatusCount{Status: p.Status}
			byStatus[p.Status] = c
			order = append(order, p.Status)
		}
		c.Count++
		c.Amount += p.Amount
	}
	counts := make([]model.StatusCount, 0, len(order))
	for _, s := range order {
		counts = append(counts, *byStatus[s])
	}
	return counts, nil
}

func (r *statisticsRepository) TopPlans(ctx context.Context, start, end time.Time, limit int) ([]model.PlanRanking, error) {
	projects, err := r.inRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byPlan := map[string]*model.PlanRanking{}
	for _, p := range projects {
		key := p.PlanType + "|" + p.PlanName
		rank, ok := byPlan[key]
		if !ok {
			rank = &model.PlanRanking{PlanType: p.PlanType, PlanName: p.PlanName}
			byPlan[key] = rank
		}
		rank.TotalOrders++
		rank.TotalRevenue += p.Amount
	}
	rankings := make([]model.PlanRanking, 0, len(byPlan))
	for _, rank := range byPlan {
		rankings = append(rankings, *rank)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].TotalRevenue != rankings[j].TotalRevenue {
			return rankings[i].TotalRevenue > rankings[j].TotalRevenue
		}
		return rankings[i].PlanType < rankings[j].PlanType
	})
	if limit > 0 && len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings, nil
}

type revenueRepository struct {
	stats *statisticsRepository
}

var _ repository.RevenueRepository = (*revenueRepository)(nil)

func (r *revenueRepository) RevenueByPeriod(ctx context.Context, groupBy string, start, end time.Time) ([]repository.RevenueDataRow, error) {
	projects, err := r.stats.inRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byPeriod := map[string]*repository.RevenueDataRow{}
	for _, p := range projects {
		period := repository.TruncatePeriod(p.CreatedAt, groupBy).Format(repository.PeriodLayout)
		row, ok := byPeriod[period]
		if !ok {
			row = &repository.RevenueDataRow{Period: period}
			byPeriod[period] = row
		}
		row.Orders++
		row.TotalRevenue += p.Amount
	}
	rows := make([]repository.RevenueDataRow, 0, len(byPeriod))
	for _, row := range byPeriod {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows, nil
}
