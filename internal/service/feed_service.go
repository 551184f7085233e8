package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"vastustructural/internal/lifecycle"
	"vastustructural/internal/model"
	"vastustructural/internal/repository"
	ws "vastustructural/internal/websocket"
)

const (
	EventProjectUpdate = "project_update"

	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// FeedEntry is one project update projected for notification and audit consumers.
type FeedEntry struct {
	ProjectID    string             `json:"project_id"`
	OrderID      string             `json:"order_id"`
	CustomerName string             `json:"customer_name"`
	Seq          int                `json:"seq"`
	Kind         model.UpdateKind   `json:"kind"`
	Status       model.Status       `json:"status"`
	StatusLabel  string             `json:"status_label"`
	Category     lifecycle.Category `json:"category"`
	Message      string             `json:"message"`
	CreatedBy    model.ActorRole    `json:"created_by"`
	AuthorName   string             `json:"author_name,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// EventPublisher pushes committed changes to live subscribers. The websocket hub implements it.
type EventPublisher interface {
	Publish(event ws.Event)
}

// FeedService is a read-only projection over project update logs. It never stores anything.
type FeedService interface {
	AdminFeed(ctx context.Context, limit int) ([]FeedEntry, error)
	ContractorFeed(ctx context.Context, contractorID string, limit int) ([]FeedEntry, error)
	// OrderFeed is the public client feed for one order.
	OrderFeed(ctx context.Context, orderID string, limit int) ([]FeedEntry, error)
}

type feedService struct {
	projects repository.ProjectRepository
}

func NewFeedService(projects repository.ProjectRepository) FeedService {
	return &feedService{projects: projects}
}

func (s *feedService) AdminFeed(ctx context.Context, limit int) ([]FeedEntry, error) {
	projects, err := s.projects.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return buildFeed(projects, limit), nil
}

func (s *feedService) ContractorFeed(ctx context.Context, contractorID string, limit int) ([]FeedEntry, error) {
	projects, err := s.projects.ListByContractor(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assigned projects: %w", err)
	}
	return buildFeed(projects, limit), nil
}

func (s *feedService) OrderFeed(ctx context.Context, orderID string, limit int) ([]FeedEntry, error) {
	orderID = strings.ToUpper(strings.TrimSpace(orderID))
	if !IsOrderID(orderID) {
		return nil, fmt.Errorf("order %s: %w", orderID, model.ErrNotFound)
	}
	project, err := s.projects.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return buildFeed([]model.Project{*project}, limit), nil
}

func toFeedEntry(project *model.Project, u model.ProjectUpdate) FeedEntry {
	meta := lifecycle.Metadata(u.Status)
	return FeedEntry{
		ProjectID:    project.ID,
		OrderID:      project.OrderID,
		CustomerName: project.CustomerName,
		Seq:          u.Seq,
		Kind:         u.Kind,
		Status:       u.Status,
		StatusLabel:  meta.Label,
		Category:     meta.Category,
		Message:      u.Message,
		CreatedBy:    u.CreatedBy,
		AuthorName:   u.AuthorName,
		CreatedAt:    u.CreatedAt,
	}
}

func clampFeedLimit(limit int) int {
	if limit <= 0 {
		return defaultFeedLimit
	}
	if limit > maxFeedLimit {
		return maxFeedLimit
	}
	return limit
}

// buildFeed flattens update logs newest first; seq breaks ties inside one project.
func buildFeed(projects []model.Project, limit int) []FeedEntry {
	var entries []FeedEntry
	for i := range projects {
		for _, u := range projects[i].Updates {
			entries = append(entries, toFeedEntry(&projects[i], u))
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Seq > entries[j].Seq
	})
	if limit = clampFeedLimit(limit); len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []FeedEntry{}
	}
	return entries
}

func publishUpdate(publisher EventPublisher, project *model.Project, u model.ProjectUpdate) {
	if publisher == nil {
		return
	}
	event := ws.Event{Type: EventProjectUpdate, Data: toFeedEntry(project, u)}
	if project.AssignedContractorID != nil {
		event.ContractorID = *project.AssignedContractorID
	}
	publisher.Publish(event)
}
