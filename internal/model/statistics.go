package model

import (
	"time"
)

// StatisticsResponse aggregates the admin dashboard figures for orders placed in a time range
type StatisticsResponse struct {
	TotalOrders        int           `json:"total_orders"`
	TotalRevenue       int64         `json:"total_revenue"`
	ActiveProjects     int           `json:"active_projects"`
	CompletedProjects  int           `json:"completed_projects"`
	PendingContractors int64         `json:"pending_contractors"`
	ByStatus           []StatusCount `json:"by_status"`
	TopPlans           []PlanRanking `json:"top_plans"`
	TimeRangeStartDate time.Time     `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time     `json:"time_range_end_date"`
}

// StatusCount is the number of projects currently holding one status
type StatusCount struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Amount int64  `json:"amount"`
}

// PlanRanking represents a plan ranked by the revenue it brought in
type PlanRanking struct {
	PlanType     string `json:"plan_type"`
	PlanName     string `json:"plan_name"`
	TotalOrders  int    `json:"total_orders"`
	TotalRevenue int64  `json:"total_revenue"`
}
