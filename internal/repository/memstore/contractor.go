package memstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/hashicorp/go-memdb"
)

type contractorRepository struct {
	db *db
}

var _ repository.ContractorRepository = (*contractorRepository)(nil)

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}

func (r *contractorRepository) Create(ctx context.Context, contractor *model.Contractor) error {
	if contractor.ID == "" {
		contractor.ID = newID()
	}
	if contractor.CreatedAt.IsZero() {
		contractor.CreatedAt = r.db.now()
	}
	contractor.UpdatedAt = contractor.CreatedAt
	if contractor.Status == "" {
		contractor.Status = model.ContractorPending
	}

	row := *contractor
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		return insertUnique(txn, tableContractors, &row, row.ID, map[string]string{"referral_code": row.ReferralCode})
	})
}

func (r *contractorRepository) List(ctx context.Context, filter repository.ContractorFilter) ([]model.Contractor, int64, error) {
	var matched []model.Contractor
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableContractors, indexID)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			c := *obj.(*model.Contractor)
			if filter.Status != "" && c.Status != filter.Status {
				continue
			}
			if filter.Search != "" && !containsFold(c.Name, filter.Search) && !containsFold(c.Company, filter.Search) &&
				!containsFold(c.Phone, filter.Search) && !containsFold(c.District, filter.Search) {
				continue
			}
			matched = append(matched, c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(matched, func(c model.Contractor) time.Time { return c.CreatedAt })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *contractorRepository) first(ctx context.Context, index, value string) (*model.Contractor, error) {
	var contractor *model.Contractor
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableContractors, index, value)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("contractor %s: %w", value, model.ErrNotFound)
		}
		c := *obj.(*model.Contractor)
		contractor = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contractor, nil
}

func (r *contractorRepository) GetByID(ctx context.Context, id string) (*model.Contractor, error) {
	return r.first(ctx, indexID, id)
}

func (r *contractorRepository) GetByReferralCode(ctx context.Context, code string) (*model.Contractor, error) {
	return r.first(ctx, "referral_code", code)
}

func (r *contractorRepository) Update(ctx context.Context, id string, patch model.ContractorPatch) (*model.Contractor, error) {
	var result model.Contractor
	err := r.db.write(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableContractors, indexID, id)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("contractor %s: %w", id, model.ErrNotFound)
		}
		c := *obj.(*model.Contractor)
		patch.Apply(&c)
		c.UpdatedAt = r.db.now()
		row := c
		if err := insertUnique(txn, tableContractors, &row, id, map[string]string{"referral_code": row.ReferralCode}); err != nil {
			return err
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
