package memstore

import (
	"context"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/hashicorp/go-memdb"
)

type leadRepository struct {
	db *db
}

var _ repository.LeadRepository = (*leadRepository)(nil)

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = newID()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = r.db.now()
	}
	row := *lead
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		return txn.Insert(tableLeads, &row)
	})
}

func (r *leadRepository) List(ctx context.Context, source string, page, limit int) ([]model.Lead, int64, error) {
	var leads []model.Lead
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLeads, indexID)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			l := *obj.(*model.Lead)
			if source != "" && l.Source != source {
				continue
			}
			leads = append(leads, l)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(leads, func(l model.Lead) time.Time { return l.CreatedAt })
	return paginate(leads, page, limit), int64(len(leads)), nil
}
