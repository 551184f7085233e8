// Package memstore is a transactional in-memory implementation of the repositories, used by
// tests and by STORAGE=memory demo deployments.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const (
	tableProjects    = "projects"
	tableContractors = "contractors"
	tableCheckouts   = "checkout_orders"
	tableLeads       = "leads"
	tableUsers       = "users"
	tableAudit       = "audit_logs"

	indexID = "id"
)

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:    indexID,
		Unique:  true,
		Indexer: &memdb.StringFieldIndex{Field: "ID"},
	}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableProjects: {
				Name: tableProjects,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					"order_id": {
						Name:    "order_id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "OrderID"},
					},
					"contractor": {
						Name:         "contractor",
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "AssignedContractorID"},
					},
				},
			},
			tableContractors: {
				Name: tableContractors,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					"referral_code": {
						Name:    "referral_code",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ReferralCode", Lowercase: true},
					},
				},
			},
			tableCheckouts: {
				Name: tableCheckouts,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					"gateway_order_id": {
						Name:    "gateway_order_id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "GatewayOrderID"},
					},
					"order_id": {
						Name:    "order_id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "OrderID"},
					},
				},
			},
			tableLeads: {
				Name:    tableLeads,
				Indexes: map[string]*memdb.IndexSchema{indexID: idIndex()},
			},
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: idIndex(),
					"email": {
						Name:    "email",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true},
					},
				},
			},
			tableAudit: {
				Name:    tableAudit,
				Indexes: map[string]*memdb.IndexSchema{indexID: idIndex()},
			},
		},
	}
}

type txKey struct{}

// db wraps the memdb handle and resolves the transaction carried in a context.
type db struct {
	mem *memdb.MemDB
	now func() time.Time
}

// New builds an empty store with every repository wired to the same database.
func New() (*repository.Store, error) {
	mem, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to build in-memory schema: %w", err)
	}
	d := &db{mem: mem, now: time.Now}
	projects := &projectRepository{db: d}
	stats := &statisticsRepository{projects: projects}
	return &repository.Store{
		Projects:    projects,
		Contractors: &contractorRepository{db: d},
		Checkouts:   &checkoutRepository{db: d},
		Leads:       &leadRepository{db: d},
		Users:       &userRepository{db: d},
		Audit:       &auditRepository{db: d},
		Statistics:  stats,
		Revenue:     &revenueRepository{stats: stats},
		Tx:          &transactionManager{db: d},
	}, nil
}

// MustNew is New for tests and wiring code where a schema error is a programming bug.
func MustNew() *repository.Store {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

func (d *db) read(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if txn, ok := ctx.Value(txKey{}).(*memdb.Txn); ok {
		return fn(txn)
	}
	txn := d.mem.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

// write joins the context transaction or runs fn in its own write transaction.
// memdb admits one writer at a time, which serializes every mutation.
func (d *db) write(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if txn, ok := ctx.Value(txKey{}).(*memdb.Txn); ok {
		return fn(txn)
	}
	txn := d.mem.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

type transactionManager struct {
	db *db
}

func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*memdb.Txn); ok {
		return fn(ctx)
	}
	txn := t.db.mem.Txn(true)
	defer txn.Abort()
	if err := fn(context.WithValue(ctx, txKey{}, txn)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func newID() string {
	return uuid.NewString()
}

// insertUnique rejects a row whose unique index value already belongs to another row.
func insertUnique(txn *memdb.Txn, table string, obj interface{}, id string, uniques map[string]string) error {
	for index, value := range uniques {
		if value == "" {
			continue
		}
		existing, err := txn.First(table, index, value)
		if err != nil {
			return err
		}
		if existing != nil && rowID(existing) != id {
			return fmt.Errorf("%s %s %q: %w", table, index, value, model.ErrConflict)
		}
	}
	return txn.Insert(table, obj)
}

func rowID(obj interface{}) string {
	switch v := obj.(type) {
	case *model.Project:
		return v.ID
	case *model.Contractor:
		return v.ID
	case *model.CheckoutOrder:
		return v.ID
	case *model.User:
		return v.ID
	}
	return ""
}

func paginate[T any](rows []T, page, limit int) []T {
	if limit <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func newestFirst[T any](rows []T, at func(T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool { return at(rows[i]).After(at(rows[j])) })
}
