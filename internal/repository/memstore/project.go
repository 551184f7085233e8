package memstore

import (
	"context"
	"fmt"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/hashicorp/go-memdb"
)

type projectRepository struct {
	db *db
}

var _ repository.ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	now := r.db.now()
	if project.ID == "" {
		project.ID = newID()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = project.CreatedAt
	stampHistory(project, now)

	row := project.Clone()
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		if existing, err := txn.First(tableProjects, indexID, row.ID); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("project %s: %w", row.ID, model.ErrConflict)
		}
		return insertUnique(txn, tableProjects, &row, row.ID, map[string]string{"order_id": row.OrderID})
	})
}

// stampHistory fills ids and timestamps the way gorm hooks do for the relational store.
func stampHistory(project *model.Project, now time.Time) {
	for i := range project.Updates {
		u := &project.Updates[i]
		if u.ID == "" {
			u.ID = newID()
		}
		u.ProjectID = project.ID
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
	}
	for i := range project.Deliverables {
		d := &project.Deliverables[i]
		if d.ID == "" {
			d.ID = newID()
		}
		d.ProjectID = project.ID
		if d.UploadedAt.IsZero() {
			d.UploadedAt = now
		}
	}
}

func (r *projectRepository) scan(ctx context.Context, index string, args ...interface{}) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableProjects, index, args...)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			projects = append(projects, obj.(*model.Project).Clone())
		}
		return nil
	})
	return projects, err
}

func (r *projectRepository) GetAll(ctx context.Context) ([]model.Project, error) {
	projects, err := r.scan(ctx, indexID)
	if err != nil {
		return nil, err
	}
	newestFirst(projects, func(p model.Project) time.Time { return p.CreatedAt })
	return projects, nil
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, int64, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	matched := make([]model.Project, 0, len(all))
	for _, p := range all {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ContractorID != "" && (p.AssignedContractorID == nil || *p.AssignedContractorID != filter.ContractorID) {
			continue
		}
		if filter.Search != "" && !containsFold(p.OrderID, filter.Search) && !containsFold(p.CustomerName, filter.Search) &&
			!containsFold(p.CustomerPhone, filter.Search) && !containsFold(p.CustomerEmail, filter.Search) {
			continue
		}
		matched = append(matched, p)
	}
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *projectRepository) first(ctx context.Context, index, value, label string) (*model.Project, error) {
	var project *model.Project
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableProjects, index, value)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("%s %s: %w", label, value, model.ErrNotFound)
		}
		c := obj.(*model.Project).Clone()
		project = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return r.first(ctx, indexID, id, "project")
}

func (r *projectRepository) GetByOrderID(ctx context.Context, orderID string) (*model.Project, error) {
	return r.first(ctx, "order_id", orderID, "order")
}

func (r *projectRepository) ListByContractor(ctx context.Context, contractorID string) ([]model.Project, error) {
	projects, err := r.scan(ctx, "contractor", contractorID)
	if err != nil {
		return nil, err
	}
	newestFirst(projects, func(p model.Project) time.Time { return p.UpdatedAt })
	return projects, nil
}

func (r *projectRepository) CountByContractor(ctx context.Context, contractorID string) (int64, error) {
	projects, err := r.scan(ctx, "contractor", contractorID)
	return int64(len(projects)), err
}

func (r *projectRepository) ExistsOrderID(ctx context.Context, orderID string) (bool, error) {
	_, err := r.GetByOrderID(ctx, orderID)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (r *projectRepository) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	return r.Apply(ctx, id, func(project *model.Project) error {
		patch.Apply(project)
		return nil
	})
}

func (r *projectRepository) Apply(ctx context.Context, id string, fn func(project *model.Project) error) (*model.Project, error) {
	var result model.Project
	err := r.db.write(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableProjects, indexID, id)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("project %s: %w", id, model.ErrNotFound)
		}
		project := obj.(*model.Project).Clone()
		knownUpdates, knownDeliverables := len(project.Updates), len(project.Deliverables)
		if err := fn(&project); err != nil {
			return err
		}
		if len(project.Updates) < knownUpdates || len(project.Deliverables) < knownDeliverables {
			return fmt.Errorf("%w: project history is append-only", model.ErrValidation)
		}

		now := r.db.now()
		project.ID = id
		project.UpdatedAt = now
		stampHistory(&project, now)

		row := project.Clone()
		if err := insertUnique(txn, tableProjects, &row, id, map[string]string{"order_id": row.OrderID}); err != nil {
			return err
		}
		result = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
