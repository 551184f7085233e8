package repository

import (
	"context"
	"fmt"
	"time"

	"vastustructural/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilter narrows a project listing. Zero values mean "any".
type ProjectFilter struct {
	Status       model.Status
	ContractorID string
	Search       string // order id, customer name, phone or email
	Page         int
	Limit        int
}

// ProjectRepository is the project store. Status, assignment, updates and deliverables only
// change through Apply; Update merges descriptive fields.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetAll(ctx context.Context) ([]model.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]model.Project, int64, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	GetByOrderID(ctx context.Context, orderID string) (*model.Project, error)
	ListByContractor(ctx context.Context, contractorID string) ([]model.Project, error)
	CountByContractor(ctx context.Context, contractorID string) (int64, error)
	ExistsOrderID(ctx context.Context, orderID string) (bool, error)
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	// Apply runs fn on the current record under an exclusive lock and persists the result.
	// fn may change status/assignment and append updates or deliverables; it must not drop any.
	Apply(ctx context.Context, id string, fn func(project *model.Project) error) (*model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func withHistory(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Deliverables", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC") })
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	// Associations are created in the same statement batch as the project row
	return translate(GetDB(ctx, r.db).Create(project).Error, "project", project.OrderID)
}

func (r *projectRepository) GetAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := withHistory(GetDB(ctx, r.db)).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func applyProjectFilter(query *gorm.DB, filter ProjectFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContractorID != "" {
		query = query.Where("assigned_contractor_id = ?", filter.ContractorID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("order_id ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ? OR customer_email ILIKE ?",
			like, like, like, like)
	}
	return query
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	db := GetDB(ctx, r.db)
	if err := applyProjectFilter(db.Model(&model.Project{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyProjectFilter(withHistory(db.Model(&model.Project{})), filter)
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	if err := withHistory(GetDB(ctx, r.db)).First(&project, "id = ?", id).Error; err != nil {
		return nil, translate(err, "project", id)
	}
	return &project, nil
}

func (r *projectRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Project, error) {
	var project model.Project
	if err := withHistory(GetDB(ctx, r.db)).First(&project, "order_id = ?", orderID).Error; err != nil {
		return nil, translate(err, "order", orderID)
	}
	return &project, nil
}

func (r *projectRepository) ListByContractor(ctx context.Context, contractorID string) ([]model.Project, error) {
	var projects []model.Project
	if err := withHistory(GetDB(ctx, r.db)).
		Where("assigned_contractor_id = ?", contractorID).
		Order("updated_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) CountByContractor(ctx context.Context, contractorID string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Project{}).Where("assigned_contractor_id = ?", contractorID).Count(&count).Error
	return count, err
}

func (r *projectRepository) ExistsOrderID(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Project{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

func (r *projectRepository) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	return r.Apply(ctx, id, func(project *model.Project) error {
		patch.Apply(project)
		return nil
	})
}

func (r *projectRepository) Apply(ctx context.Context, id string, fn func(project *model.Project) error) (*model.Project, error) {
	var result model.Project
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", id).Error; err != nil {
			return translate(err, "project", id)
		}
		if err := tx.Where("project_id = ?", id).Order("seq ASC").Find(&project.Updates).Error; err != nil {
			return fmt.Errorf("failed to load project updates: %w", err)
		}
		if err := tx.Where("project_id = ?", id).Order("uploaded_at ASC").Find(&project.Deliverables).Error; err != nil {
			return fmt.Errorf("failed to load deliverables: %w", err)
		}

		knownUpdates, knownDeliverables := len(project.Updates), len(project.Deliverables)
		if err := fn(&project); err != nil {
			return err
		}
		if len(project.Updates) < knownUpdates || len(project.Deliverables) < knownDeliverables {
			return fmt.Errorf("%w: project history is append-only", model.ErrValidation)
		}

		project.ID = id
		project.UpdatedAt = time.Now()
		if err := tx.Omit(clause.Associations).Save(&project).Error; err != nil {
			return fmt.Errorf("failed to save project: %w", translate(err, "project", id))
		}
		for i := knownUpdates; i < len(project.Updates); i++ {
			project.Updates[i].ProjectID = id
			if err := tx.Create(&project.Updates[i]).Error; err != nil {
				return fmt.Errorf("failed to append project update: %w", translate(err, "project update", id))
			}
		}
		for i := knownDeliverables; i < len(project.Deliverables); i++ {
			project.Deliverables[i].ProjectID = id
			if err := tx.Create(&project.Deliverables[i]).Error; err != nil {
				return fmt.Errorf("failed to attach deliverable: %w", err)
			}
		}

		result = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
