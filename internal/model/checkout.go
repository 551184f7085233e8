package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutStatus enum constants
const (
	CheckoutCreated = "created"
	CheckoutPaid    = "paid"
	CheckoutFailed  = "failed"
)

// CheckoutOrder is a payment intent. Once paid it points at the Project it created.
type CheckoutOrder struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID        string     `gorm:"type:varchar(8);uniqueIndex;not null" json:"order_id"`
	GatewayOrderID string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"gateway_order_id"`
	PlanType       string     `gorm:"type:varchar(20);not null" json:"plan_type"`
	PlanName       string     `gorm:"type:varchar(100);not null" json:"plan_name"`
	Amount         int64      `gorm:"not null" json:"amount"`
	Currency       string     `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	CustomerName   string     `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone  string     `gorm:"type:varchar(20);not null" json:"customer_phone"`
	CustomerEmail  string     `gorm:"type:varchar(255)" json:"customer_email"`
	PlotSize       string     `gorm:"type:varchar(50)" json:"plot_size"`
	PlotDimensions string     `gorm:"type:varchar(50)" json:"plot_dimensions"`
	Facing         string     `gorm:"type:varchar(20)" json:"facing"`
	Floors         int        `json:"floors"`
	Requirements   string     `gorm:"type:text" json:"requirements"`
	Status         string     `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	PaymentID      string     `gorm:"type:varchar(100)" json:"payment_id"`
	ProjectID      *string    `gorm:"type:uuid" json:"project_id"`
	PaidAt         *time.Time `json:"paid_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (o *CheckoutOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
