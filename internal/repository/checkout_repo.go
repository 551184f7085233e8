package repository

import (
	"context"

	"vastustructural/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRepository interface {
	Create(ctx context.Context, order *model.CheckoutOrder) error
	// FindForUpdate loads the order by its gateway handle and locks it for the current transaction.
	FindForUpdate(ctx context.Context, gatewayOrderID string) (*model.CheckoutOrder, error)
	Update(ctx context.Context, order *model.CheckoutOrder) error
	ExistsOrderID(ctx context.Context, orderID string) (bool, error)
}

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(ctx context.Context, order *model.CheckoutOrder) error {
	return translate(GetDB(ctx, r.db).Create(order).Error, "checkout order", order.OrderID)
}

func (r *checkoutRepository) FindForUpdate(ctx context.Context, gatewayOrderID string) (*model.CheckoutOrder, error) {
	var order model.CheckoutOrder
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		return nil, translate(err, "checkout order", gatewayOrderID)
	}
	return &order, nil
}

func (r *checkoutRepository) Update(ctx context.Context, order *model.CheckoutOrder) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *checkoutRepository) ExistsOrderID(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.CheckoutOrder{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}
