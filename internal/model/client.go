package model

import "time"

// ClientSummary is a customer aggregated from their projects. It has no table of its own.
type ClientSummary struct {
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	ProjectCount int       `json:"project_count"`
	TotalSpent   int64     `json:"total_spent"`
	LastOrderAt  time.Time `json:"last_order_at"`
}
