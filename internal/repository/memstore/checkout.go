package memstore

import (
	"context"
	"fmt"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/hashicorp/go-memdb"
)

type checkoutRepository struct {
	db *db
}

var _ repository.CheckoutRepository = (*checkoutRepository)(nil)

func cloneCheckout(o *model.CheckoutOrder) model.CheckoutOrder {
	c := *o
	if o.ProjectID != nil {
		id := *o.ProjectID
		c.ProjectID = &id
	}
	if o.PaidAt != nil {
		at := *o.PaidAt
		c.PaidAt = &at
	}
	return c
}

func (r *checkoutRepository) Create(ctx context.Context, order *model.CheckoutOrder) error {
	if order.ID == "" {
		order.ID = newID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.db.now()
	}
	order.UpdatedAt = order.CreatedAt

	row := cloneCheckout(order)
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		return insertUnique(txn, tableCheckouts, &row, row.ID, map[string]string{
			"order_id":         row.OrderID,
			"gateway_order_id": row.GatewayOrderID,
		})
	})
}

// FindForUpdate has no lock to take: memdb serializes writers, so callers run it inside RunInTx.
func (r *checkoutRepository) FindForUpdate(ctx context.Context, gatewayOrderID string) (*model.CheckoutOrder, error) {
	var order *model.CheckoutOrder
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableCheckouts, "gateway_order_id", gatewayOrderID)
		if err != nil {
			return err
		}
		if obj == nil {
			return fmt.Errorf("checkout order %s: %w", gatewayOrderID, model.ErrNotFound)
		}
		c := cloneCheckout(obj.(*model.CheckoutOrder))
		order = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *checkoutRepository) Update(ctx context.Context, order *model.CheckoutOrder) error {
	order.UpdatedAt = r.db.now()
	row := cloneCheckout(order)
	return r.db.write(ctx, func(txn *memdb.Txn) error {
		existing, err := txn.First(tableCheckouts, indexID, row.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("checkout order %s: %w", row.ID, model.ErrNotFound)
		}
		return insertUnique(txn, tableCheckouts, &row, row.ID, map[string]string{
			"order_id":         row.OrderID,
			"gateway_order_id": row.GatewayOrderID,
		})
	})
}

func (r *checkoutRepository) ExistsOrderID(ctx context.Context, orderID string) (bool, error) {
	var found bool
	err := r.db.read(ctx, func(txn *memdb.Txn) error {
		obj, err := txn.First(tableCheckouts, "order_id", orderID)
		found = obj != nil
		return err
	})
	return found, err
}
