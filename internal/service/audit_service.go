package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

type AuditLogResponse struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id"`
	ActorRole  model.ActorRole        `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityID   string                 `json:"entity_id"`
	EntityName string                 `json:"entity_name"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  string                 `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, filter repository.AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// GetAuditLogs returns the administrative action log, newest first
func (s *auditService) GetAuditLogs(ctx context.Context, filter repository.AuditFilter) ([]AuditLogResponse, int64, error) {
	filter.Action = strings.ToUpper(strings.TrimSpace(filter.Action))
	filter.EntityID = strings.TrimSpace(filter.EntityID)
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		var details map[string]interface{}
		if len(l.Details) > 0 {
			_ = json.Unmarshal(l.Details, &details)
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID,
			ActorID:    l.ActorID,
			ActorRole:  l.ActorRole,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		})
	}

	return res, total, nil
}
