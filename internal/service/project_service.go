package service

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"vastustructural/internal/lifecycle"
	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

// --- View DTOs ---

type TimelineStep struct {
	Status   model.Status       `json:"status"`
	Label    string             `json:"label"`
	Category lifecycle.Category `json:"category"`
	Reached  bool               `json:"reached"`
	Current  bool               `json:"current"`
}

type ContractorBrief struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company,omitempty"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
}

type UpdateResponse struct {
	ID          string             `json:"id"`
	Seq         int                `json:"seq"`
	Kind        model.UpdateKind   `json:"kind"`
	Status      model.Status       `json:"status"`
	StatusLabel string             `json:"status_label"`
	Category    lifecycle.Category `json:"category"`
	Message     string             `json:"message"`
	CreatedBy   model.ActorRole    `json:"created_by"`
	AuthorName  string             `json:"author_name,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ProjectView is a project as one portal sees it. Fields a role may not see are left empty.
type ProjectView struct {
	ID              string              `json:"id"`
	OrderID         string              `json:"order_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	PlanType        string              `json:"plan_type"`
	PlanName        string              `json:"plan_name"`
	Amount          *int64              `json:"amount,omitempty"`
	PlotSize        string              `json:"plot_size"`
	PlotDimensions  string              `json:"plot_dimensions"`
	Facing          string              `json:"facing"`
	Floors          int                 `json:"floors"`
	Requirements    string              `json:"requirements"`
	Status          model.Status        `json:"status"`
	StatusLabel     string              `json:"status_label"`
	StatusCategory  lifecycle.Category  `json:"status_category"`
	ProgressStep    int                 `json:"progress_step"`
	ProgressPercent int                 `json:"progress_percent"`
	Timeline        []TimelineStep      `json:"timeline"`
	Contractor      *ContractorBrief    `json:"contractor,omitempty"`
	Updates         []UpdateResponse    `json:"updates"`
	Deliverables    []model.Deliverable `json:"deliverables"`
	AllowedStatuses []model.Status      `json:"allowed_statuses"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type ProjectListQuery struct {
	Status       string
	ContractorID string
	Search       string
	Page         int
	Limit        int
}

// ProjectService serves the read side of the three portals plus the admin field edit.
// Lifecycle writes go through LifecycleService.
type ProjectService interface {
	ListProjects(ctx context.Context, q ProjectListQuery) ([]ProjectView, int64, error)
	GetProject(ctx context.Context, id string) (*ProjectView, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*ProjectView, error)
	ListContractorProjects(ctx context.Context, contractorID string) ([]ProjectView, error)
	GetContractorProject(ctx context.Context, contractorID, id string) (*ProjectView, error)
	TrackOrder(ctx context.Context, orderID string) (*ProjectView, error)
	ListClients(ctx context.Context, search string) ([]model.ClientSummary, error)
}

type projectService struct {
	projects    repository.ProjectRepository
	contractors repository.ContractorRepository
}

func NewProjectService(store *repository.Store) ProjectService {
	return &projectService{projects: store.Projects, contractors: store.Contractors}
}

// viewer decides what a portal is allowed to see and do.
type viewer struct {
	role        model.ActorRole // empty for the public client portal
	hideAmount  bool
	hideContact bool
}

var (
	adminViewer      = viewer{role: model.RoleAdmin}
	contractorViewer = viewer{role: model.RoleContractor, hideAmount: true, hideContact: true}
	clientViewer     = viewer{hideContact: true}
)

func timeline(status model.Status) []TimelineStep {
	current, _ := lifecycle.Rank(status)
	steps := make([]TimelineStep, 0, len(lifecycle.AllStatuses()))
	for i, s := range lifecycle.AllStatuses() {
		meta := lifecycle.Metadata(s)
		steps = append(steps, TimelineStep{
			Status:   s,
			Label:    meta.Label,
			Category: meta.Category,
			Reached:  i <= current,
			Current:  i == current,
		})
	}
	return steps
}

func toUpdateResponse(u model.ProjectUpdate) UpdateResponse {
	meta := lifecycle.Metadata(u.Status)
	return UpdateResponse{
		ID:          u.ID,
		Seq:         u.Seq,
		Kind:        u.Kind,
		Status:      u.Status,
		StatusLabel: meta.Label,
		Category:    meta.Category,
		Message:     u.Message,
		CreatedBy:   u.CreatedBy,
		AuthorName:  u.AuthorName,
		CreatedAt:   u.CreatedAt,
	}
}

func toContractorBrief(c *model.Contractor, withPhone bool) *ContractorBrief {
	if c == nil {
		return nil
	}
	brief := &ContractorBrief{ID: c.ID, Name: c.Name, Company: c.Company, DisplayName: c.DisplayName()}
	if withPhone {
		brief.Phone = c.Phone
	}
	return brief
}

func toProjectView(p *model.Project, contractor *model.Contractor, v viewer) ProjectView {
	meta := lifecycle.Metadata(p.Status)
	step, percent := lifecycle.Progress(p.Status)

	updates := make([]UpdateResponse, 0, len(p.Updates))
	for _, u := range p.Updates {
		updates = append(updates, toUpdateResponse(u))
	}
	deliverables := append([]model.Deliverable{}, p.Deliverables...)

	allowed := []model.Status{}
	if v.role != "" {
		if targets := lifecycle.AllowedTargets(v.role, p.Status); targets != nil {
			allowed = targets
		}
	}

	view := ProjectView{
		ID:              p.ID,
		OrderID:         p.OrderID,
		CustomerName:    p.CustomerName,
		CustomerPhone:   p.CustomerPhone,
		CustomerEmail:   p.CustomerEmail,
		PlanType:        p.PlanType,
		PlanName:        p.PlanName,
		PlotSize:        p.PlotSize,
		PlotDimensions:  p.PlotDimensions,
		Facing:          p.Facing,
		Floors:          p.Floors,
		Requirements:    p.Requirements,
		Status:          p.Status,
		StatusLabel:     meta.Label,
		StatusCategory:  meta.Category,
		ProgressStep:    step,
		ProgressPercent: percent,
		Timeline:        timeline(p.Status),
		Contractor:      toContractorBrief(contractor, v.role == model.RoleAdmin),
		Updates:         updates,
		Deliverables:    deliverables,
		AllowedStatuses: allowed,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if !v.hideAmount {
		amount := p.Amount
		view.Amount = &amount
	}
	if v.hideContact {
		view.CustomerEmail = ""
		if v.role == "" {
			view.CustomerPhone = ""
		}
	}
	return view
}

// contractorCache resolves assignees once per request.
type contractorCache struct {
	repo repository.ContractorRepository
	byID map[string]*model.Contractor
}

func (c *contractorCache) get(ctx context.Context, id *string) (*model.Contractor, error) {
	if id == nil {
		return nil, nil
	}
	if found, ok := c.byID[*id]; ok {
		return found, nil
	}
	contractor, err := c.repo.GetByID(ctx, *id)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	c.byID[*id] = contractor
	return contractor, nil
}

func (s *projectService) views(ctx context.Context, projects []model.Project, v viewer) ([]ProjectView, error) {
	cache := &contractorCache{repo: s.contractors, byID: map[string]*model.Contractor{}}
	out := make([]ProjectView, 0, len(projects))
	for i := range projects {
		contractor, err := cache.get(ctx, projects[i].AssignedContractorID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve contractor: %w", err)
		}
		out = append(out, toProjectView(&projects[i], contractor, v))
	}
	return out, nil
}

func (s *projectService) view(ctx context.Context, p *model.Project, v viewer) (*ProjectView, error) {
	views, err := s.views(ctx, []model.Project{*p}, v)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// --- Admin ---

func (s *projectService) ListProjects(ctx context.Context, q ProjectListQuery) ([]ProjectView, int64, error) {
	status := model.Status(q.Status)
	if status != "" && !lifecycle.IsValid(status) {
		return nil, 0, fmt.Errorf("%w: %q", model.ErrInvalidStatus, q.Status)
	}
	projects, total, err := s.projects.List(ctx, repository.ProjectFilter{
		Status:       status,
		ContractorID: q.ContractorID,
		Search:       strings.TrimSpace(q.Search),
		Page:         q.Page,
		Limit:        q.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	views, err := s.views(ctx, projects, adminViewer)
	return views, total, err
}

func (s *projectService) GetProject(ctx context.Context, id string) (*ProjectView, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, project, adminViewer)
}

func validatePatch(patch model.ProjectPatch) error {
	if patch.CustomerName != nil && strings.TrimSpace(*patch.CustomerName) == "" {
		return validationError("customer_name cannot be empty")
	}
	if patch.CustomerPhone != nil && strings.TrimSpace(*patch.CustomerPhone) == "" {
		return validationError("customer_phone cannot be empty")
	}
	if patch.CustomerEmail != nil && *patch.CustomerEmail != "" {
		if _, err := mail.ParseAddress(*patch.CustomerEmail); err != nil {
			return validationError("invalid email format")
		}
	}
	if patch.Floors != nil && *patch.Floors < 1 {
		return validationError("floors must be at least 1")
	}
	return nil
}

func (s *projectService) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*ProjectView, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	project, err := s.projects.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, project, adminViewer)
}

// --- Contractor ---

func (s *projectService) ListContractorProjects(ctx context.Context, contractorID string) ([]ProjectView, error) {
	projects, err := s.projects.ListByContractor(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned projects: %w", err)
	}
	return s.views(ctx, projects, contractorViewer)
}

func (s *projectService) GetContractorProject(ctx context.Context, contractorID, id string) (*ProjectView, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Unassigned projects are reported as missing so ids cannot be probed
	if project.AssignedContractorID == nil || *project.AssignedContractorID != contractorID {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNotFound)
	}
	return s.view(ctx, project, contractorViewer)
}

// --- Client ---

func (s *projectService) TrackOrder(ctx context.Context, orderID string) (*ProjectView, error) {
	orderID = strings.ToUpper(strings.TrimSpace(orderID))
	if !IsOrderID(orderID) {
		return nil, fmt.Errorf("order %s: %w", orderID, model.ErrNotFound)
	}
	project, err := s.projects.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, project, clientViewer)
}

// ListClients groups projects by customer phone. Name and email come from the newest order.
func (s *projectService) ListClients(ctx context.Context, search string) ([]model.ClientSummary, error) {
	projects, err := s.projects.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	byPhone := make(map[string]*model.ClientSummary)
	for _, p := range projects {
		summary, ok := byPhone[p.CustomerPhone]
		if !ok {
			summary = &model.ClientSummary{Phone: p.CustomerPhone}
			byPhone[p.CustomerPhone] = summary
		}
		summary.ProjectCount++
		summary.TotalSpent += p.Amount
		if !p.CreatedAt.Before(summary.LastOrderAt) {
			summary.LastOrderAt = p.CreatedAt
			summary.Name = p.CustomerName
			summary.Email = p.CustomerEmail
		}
	}

	search = strings.ToLower(strings.TrimSpace(search))
	clients := make([]model.ClientSummary, 0, len(byPhone))
	for _, c := range byPhone {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(c.Phone, search) && !strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		clients = append(clients, *c)
	}
	sort.Slice(clients, func(i, j int) bool {
		if !clients[i].LastOrderAt.Equal(clients[j].LastOrderAt) {
			return clients[i].LastOrderAt.After(clients[j].LastOrderAt)
		}
		return clients[i].Phone < clients[j].Phone
	})
	return clients, nil
}
