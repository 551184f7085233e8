package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vastustructural/internal/lifecycle"
	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

// Actor is whoever drives a lifecycle operation.
type Actor struct {
	Role model.ActorRole
	ID   string // user or contractor id; empty for system
	Name string
}

// SystemActor authors automated changes such as payment-created projects.
var SystemActor = Actor{Role: model.RoleSystem, Name: "System"}

// --- DTOs ---

type NewProjectInput struct {
	OrderID        string `json:"order_id"` // generated when empty
	CustomerName   string `json:"customer_name" binding:"required"`
	CustomerPhone  string `json:"customer_phone" binding:"required"`
	CustomerEmail  string `json:"customer_email"`
	PlanType       string `json:"plan_type" binding:"required"`
	PlanName       string `json:"plan_name"`
	Amount         int64  `json:"amount"`
	PlotSize       string `json:"plot_size"`
	PlotDimensions string `json:"plot_dimensions"`
	Facing         string `json:"facing"`
	Floors         int    `json:"floors"`
	Requirements   string `json:"requirements"`
	Message        string `json:"message"` // seed update text
}

type TransitionRequest struct {
	Status  model.Status `json:"status" binding:"required"`
	Message string       `json:"message"`
}

type CommentRequest struct {
	Message string `json:"message"`
}

type AssignContractorRequest struct {
	ContractorID string `json:"contractor_id" binding:"required"`
}

type DeliverableInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	URL     string `json:"url"`
	Size    string `json:"size"`
	Message string `json:"message"` // optional note for the log entry
}

// LifecycleService is the only writer of project status, assignment, updates and deliverables.
type LifecycleService interface {
	CreateProject(ctx context.Context, in NewProjectInput) (*model.Project, error)
	Transition(ctx context.Context, projectID string, to model.Status, message string, actor Actor) (*model.ProjectUpdate, error)
	PostComment(ctx context.Context, projectID, message string, actor Actor) (*model.ProjectUpdate, error)
	AssignContractor(ctx context.Context, projectID, contractorID string, actor Actor) (*model.ProjectUpdate, error)
	AttachDeliverable(ctx context.Context, projectID string, in DeliverableInput, actor Actor) (*model.Deliverable, error)
}

type lifecycleService struct {
	store     *repository.Store
	publisher EventPublisher // optional
	now       func() time.Time
}

func NewLifecycleService(store *repository.Store, publisher EventPublisher) LifecycleService {
	return &lifecycleService{store: store, publisher: publisher, now: time.Now}
}

var validPlanTypes = map[string]bool{
	model.PlanBasic:    true,
	model.PlanStandard: true,
	model.PlanPremium:  true,
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

// --- Operations ---

// buildProject validates the input and returns a new order_placed project with its seed update.
func buildProject(in NewProjectInput, now time.Time) (*model.Project, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	if in.CustomerName == "" {
		return nil, validationError("customer_name is required")
	}
	if in.CustomerPhone == "" {
		return nil, validationError("customer_phone is required")
	}
	if !validPlanTypes[in.PlanType] {
		return nil, validationError("plan_type must be one of: basic, standard, premium")
	}
	if in.Amount < 0 {
		return nil, validationError("amount cannot be negative")
	}
	if in.Floors < 0 {
		return nil, validationError("floors cannot be negative")
	}
	if in.Floors == 0 {
		in.Floors = 1
	}
	if in.OrderID != "" && !IsOrderID(in.OrderID) {
		return nil, validationError("order_id must be VS followed by 6 letters or digits")
	}
	if in.PlanName == "" {
		in.PlanName = strings.ToUpper(in.PlanType[:1]) + in.PlanType[1:] + " Plan"
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = "Order placed successfully. Our team will reach out for plot details."
	}

	return &model.Project{
		OrderID:        in.OrderID,
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		CustomerEmail:  strings.TrimSpace(in.CustomerEmail),
		PlanType:       in.PlanType,
		PlanName:       in.PlanName,
		Amount:         in.Amount,
		PlotSize:       in.PlotSize,
		PlotDimensions: in.PlotDimensions,
		Facing:         in.Facing,
		Floors:         in.Floors,
		Requirements:   in.Requirements,
		Status:         model.StatusOrderPlaced,
		CreatedAt:      now,
		UpdatedAt:      now,
		Updates: []model.ProjectUpdate{{
			Seq:        1,
			Kind:       model.UpdateKindTransition,
			Status:     model.StatusOrderPlaced,
			Message:    message,
			CreatedBy:  model.RoleSystem,
			AuthorName: SystemActor.Name,
			CreatedAt:  now,
		}},
	}, nil
}

func (s *lifecycleService) CreateProject(ctx context.Context, in NewProjectInput) (*model.Project, error) {
	project, err := buildProject(in, s.now())
	if err != nil {
		return nil, err
	}

	err = s.store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if project.OrderID == "" {
			id, err := reserveOrderID(txCtx, s.store)
			if err != nil {
				return err
			}
			project.OrderID = id
		}
		if err := s.store.Projects.Create(txCtx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishUpdate(s.publisher, project, project.Updates[0])
	return project, nil
}

// ensureAssigned rejects contractors acting on projects that are not theirs.
func ensureAssigned(project *model.Project, actor Actor) error {
	if actor.Role != model.RoleContractor {
		return nil
	}
	if actor.ID == "" || project.AssignedContractorID == nil || *project.AssignedContractorID != actor.ID {
		return fmt.Errorf("%w: project %s is not assigned to this contractor", model.ErrForbiddenTransition, project.OrderID)
	}
	return nil
}

func (s *lifecycleService) Transition(ctx context.Context, projectID string, to model.Status, message string, actor Actor) (*model.ProjectUpdate, error) {
	if !lifecycle.IsValid(to) {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, to)
	}
	return s.record(ctx, projectID, &to, message, actor)
}

// PostComment logs a note against whatever status the project holds when the lock is taken.
func (s *lifecycleService) PostComment(ctx context.Context, projectID, message string, actor Actor) (*model.ProjectUpdate, error) {
	return s.record(ctx, projectID, nil, message, actor)
}

// record appends one update under the project lock. A nil target keeps the current status.
func (s *lifecycleService) record(ctx context.Context, projectID string, to *model.Status, message string, actor Actor) (*model.ProjectUpdate, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationError("message is required")
	}
	if !lifecycle.IsValidRole(actor.Role) {
		return nil, validationError("unknown actor role %q", actor.Role)
	}

	project, err := s.store.Projects.Apply(ctx, projectID, func(project *model.Project) error {
		if err := ensureAssigned(project, actor); err != nil {
			return err
		}
		target := project.Status
		if to != nil {
			target = *to
			// contractors leave notes through PostComment; a transition must move forward
			if actor.Role == model.RoleContractor && target == project.Status {
				return fmt.Errorf("%w: project %s is already %s", model.ErrForbiddenTransition, project.OrderID, target)
			}
		}
		if !lifecycle.IsTransitionAllowed(actor.Role, project.Status, target) {
			return fmt.Errorf("%w: %s cannot move a project from %s to %s",
				model.ErrForbiddenTransition, actor.Role, project.Status, target)
		}
		s.appendUpdate(project, target, message, actor, lifecycle.KindFor(project.Status, target))
		project.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.committed(project), nil
}

func (s *lifecycleService) AssignContractor(ctx context.Context, projectID, contractorID string, actor Actor) (*model.ProjectUpdate, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins assign contractors", model.ErrForbiddenTransition)
	}
	contractorID = strings.TrimSpace(contractorID)
	if contractorID == "" {
		return nil, validationError("contractor_id is required")
	}

	var project *model.Project
	err := s.store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		contractor, err := s.store.Contractors.GetByID(txCtx, contractorID)
		if err != nil {
			return err
		}
		if contractor.Status != model.ContractorApproved {
			return validationError("contractor %s is %s, only approved contractors can be assigned", contractor.Name, contractor.Status)
		}

		project, err = s.store.Projects.Apply(txCtx, projectID, func(p *model.Project) error {
			message := fmt.Sprintf("Project assigned to %s", contractor.DisplayName())
			s.appendUpdate(p, model.StatusContractorAssigned, message, actor, model.UpdateKindTransition)
			p.Status = model.StatusContractorAssigned
			p.AssignedContractorID = &contractor.ID
			return nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.committed(project), nil
}

func (s *lifecycleService) AttachDeliverable(ctx context.Context, projectID string, in DeliverableInput, actor Actor) (*model.Deliverable, error) {
	if actor.Role != model.RoleAdmin && actor.Role != model.RoleContractor {
		return nil, fmt.Errorf("%w: %q cannot upload deliverables", model.ErrForbiddenTransition, actor.Role)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if in.URL == "" {
		return nil, validationError("url is required")
	}
	if !model.IsDeliverableType(in.Type) {
		return nil, validationError("type must be one of: pdf, dwg, image, document")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = fmt.Sprintf("Deliverable uploaded: %s", in.Name)
	}

	project, err := s.store.Projects.Apply(ctx, projectID, func(p *model.Project) error {
		if err := ensureAssigned(p, actor); err != nil {
			return err
		}
		p.Deliverables = append(p.Deliverables, model.Deliverable{
			Name:       in.Name,
			Type:       in.Type,
			URL:        in.URL,
			Size:       in.Size,
			UploadedAt: s.now(),
			UploadedBy: actor.Role,
		})
		// Uploads are logged without moving the lifecycle
		s.appendUpdate(p, p.Status, message, actor, model.UpdateKindAttachment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(project)
	deliverable := project.Deliverables[len(project.Deliverables)-1]
	return &deliverable, nil
}

func (s *lifecycleService) appendUpdate(p *model.Project, status model.Status, message string, actor Actor, kind model.UpdateKind) {
	p.Updates = append(p.Updates, model.ProjectUpdate{
		ProjectID:  p.ID,
		Seq:        p.NextSeq(),
		Kind:       kind,
		Status:     status,
		Message:    message,
		CreatedBy:  actor.Role,
		AuthorName: actor.Name,
		CreatedAt:  s.now(),
	})
}

// committed publishes the newest log entry of a persisted project and returns a copy of it.
func (s *lifecycleService) committed(project *model.Project) *model.ProjectUpdate {
	update := *project.LastUpdate()
	publishUpdate(s.publisher, project, update)
	return &update
}
