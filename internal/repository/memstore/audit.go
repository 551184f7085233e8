package memstore

import (
	"context"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/hashicorp/go-memdb"
)

type auditRepository struct {
	db *db
}

var _ repository.AuditRepository = (*auditRepository)(nil)

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.db.now()
	}
	row := *entry
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		return txn.Insert(tableAudit, &row)
	})
}

func (r *auditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableAudit, indexID)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			l := *obj.(*model.AuditLog)
			if filter.Action != "" && l.Action != filter.Action {
				continue
			}
			if filter.EntityID != "" && l.EntityID != filter.EntityID {
				continue
			}
			logs = append(logs, l)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	newestFirst(logs, func(l model.AuditLog) time.Time { return l.CreatedAt })
	return paginate(logs, filter.Page, filter.Limit), int64(len(logs)), nil
}
