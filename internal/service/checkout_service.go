package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vastustructural/internal/catalog"
	"vastustructural/internal/model"
	"vastustructural/internal/payment"
	"vastustructural/internal/repository"
)

// --- Checkout DTOs ---

type PlanResponse struct {
	catalog.Plan
	Breakdown catalog.Breakdown `json:"breakdown"`
	Currency  string            `json:"currency"`
}

type CheckoutRequest struct {
	PlanType       string `json:"plan_type" binding:"required"`
	CustomerName   string `json:"customer_name" binding:"required"`
	CustomerPhone  string `json:"customer_phone" binding:"required"`
	CustomerEmail  string `json:"customer_email"`
	PlotSize       string `json:"plot_size"`
	PlotDimensions string `json:"plot_dimensions"`
	Facing         string `json:"facing"`
	Floors         int    `json:"floors"`
	Requirements   string `json:"requirements"`
}

type CheckoutResponse struct {
	OrderID        string            `json:"order_id"`
	GatewayOrderID string            `json:"gateway_order_id"`
	KeyID          string            `json:"key_id"`
	PlanType       string            `json:"plan_type"`
	PlanName       string            `json:"plan_name"`
	Amount         int64             `json:"amount"`
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	Breakdown      catalog.Breakdown `json:"breakdown"`
}

// VerifyPaymentRequest carries what the checkout widget hands back after payment.
type VerifyPaymentRequest struct {
	GatewayOrderID string `json:"razorpay_order_id" binding:"required"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

type VerifyPaymentResponse struct {
	OrderID   string `json:"order_id"`
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	TrackURL  string `json:"track_url"`
}

// --- Interface ---

type CheckoutService interface {
	Plans() []PlanResponse
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResponse, error)
}

type checkoutService struct {
	store     *repository.Store
	catalog   *catalog.Catalog
	gateway   payment.Gateway
	publisher EventPublisher // optional
	now       func() time.Time
}

func NewCheckoutService(store *repository.Store, plans *catalog.Catalog, gateway payment.Gateway, publisher EventPublisher) CheckoutService {
	return &checkoutService{store: store, catalog: plans, gateway: gateway, publisher: publisher, now: time.Now}
}

var validFacings = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"north-east": true, "north-west": true, "south-east": true, "south-west": true,
}

const maxFloors = 10

func (s *checkoutService) Plans() []PlanResponse {
	plans := s.catalog.Plans()
	res := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, PlanResponse{Plan: p, Breakdown: s.catalog.Breakdown(p), Currency: s.catalog.Currency()})
	}
	return res
}

func (s *checkoutService) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	plan, ok := s.catalog.Get(req.PlanType)
	if !ok {
		return nil, validationError("unknown plan %q", req.PlanType)
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, validationError("customer_name is required")
	}
	phone, err := normalizePhone(req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.CustomerEmail)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	facing := strings.ToLower(strings.TrimSpace(req.Facing))
	if facing != "" && !validFacings[facing] {
		return nil, validationError("facing must be a compass direction such as north or south-east")
	}
	floors := req.Floors
	if floors == 0 {
		floors = 1
	}
	if floors < 1 || floors > maxFloors {
		return nil, validationError("floors must be between 1 and %d", maxFloors)
	}

	orderID, err := reserveOrderID(ctx, s.store)
	if err != nil {
		return nil, err
	}
	amountMinor := catalog.MinorUnits(plan.Price)
	gwOrder, err := s.gateway.CreateOrder(ctx, amountMinor, s.catalog.Currency(), orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	order := &model.CheckoutOrder{
		OrderID:        orderID,
		GatewayOrderID: gwOrder.ID,
		PlanType:       plan.Type,
		PlanName:       plan.Name,
		Amount:         plan.Price,
		Currency:       s.catalog.Currency(),
		CustomerName:   name,
		CustomerPhone:  phone,
		CustomerEmail:  email,
		PlotSize:       strings.TrimSpace(req.PlotSize),
		PlotDimensions: strings.TrimSpace(req.PlotDimensions),
		Facing:         facing,
		Floors:         floors,
		Requirements:   strings.TrimSpace(req.Requirements),
		Status:         model.CheckoutCreated,
	}
	if err := s.store.Checkouts.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save checkout: %w", err)
	}

	return &CheckoutResponse{
		OrderID:        order.OrderID,
		GatewayOrderID: order.GatewayOrderID,
		KeyID:          s.gateway.KeyID(),
		PlanType:       plan.Type,
		PlanName:       plan.Name,
		Amount:         plan.Price,
		AmountMinor:    amountMinor,
		Currency:       order.Currency,
		Breakdown:      s.catalog.Breakdown(plan),
	}, nil
}

func toVerifyResponse(order *model.CheckoutOrder) *VerifyPaymentResponse {
	res := &VerifyPaymentResponse{OrderID: order.OrderID, Status: order.Status, TrackURL: "/track/" + order.OrderID}
	if order.ProjectID != nil {
		res.ProjectID = *order.ProjectID
	}
	return res
}

// VerifyPayment checks the gateway signature and, once, turns the checkout into a project.
// Repeated calls for a paid order return the same project.
func (s *checkoutService) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	var (
		order    *model.CheckoutOrder
		project  *model.Project
		rejected bool
	)
	err := s.store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.store.Checkouts.FindForUpdate(txCtx, strings.TrimSpace(req.GatewayOrderID))
		if err != nil {
			return err
		}
		if order.Status == model.CheckoutPaid {
			return nil
		}

		if !s.gateway.VerifySignature(order.GatewayOrderID, req.PaymentID, req.Signature) {
			rejected = true
			order.Status = model.CheckoutFailed
			if err := s.store.Checkouts.Update(txCtx, order); err != nil {
				return fmt.Errorf("failed to mark checkout failed: %w", err)
			}
			return writeAudit(txCtx, s.store.Audit, SystemActor, model.ActionPaymentFailed, order.OrderID, order.CustomerName,
				map[string]interface{}{"gateway_order_id": order.GatewayOrderID, "payment_id": req.PaymentID})
		}

		project, err = buildProject(NewProjectInput{
			OrderID:        order.OrderID,
			CustomerName:   order.CustomerName,
			CustomerPhone:  order.CustomerPhone,
			CustomerEmail:  order.CustomerEmail,
			PlanType:       order.PlanType,
			PlanName:       order.PlanName,
			Amount:         order.Amount,
			PlotSize:       order.PlotSize,
			PlotDimensions: order.PlotDimensions,
			Facing:         order.Facing,
			Floors:         order.Floors,
			Requirements:   order.Requirements,
			Message:        fmt.Sprintf("Payment received for %s. Order placed.", order.PlanName),
		}, s.now())
		if err != nil {
			return err
		}
		if err := s.store.Projects.Create(txCtx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		paidAt := s.now()
		order.Status = model.CheckoutPaid
		order.PaymentID = req.PaymentID
		order.ProjectID = &project.ID
		order.PaidAt = &paidAt
		if err := s.store.Checkouts.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to mark checkout paid: %w", err)
		}
		return writeAudit(txCtx, s.store.Audit, SystemActor, model.ActionPaymentVerified, order.OrderID, order.CustomerName,
			map[string]interface{}{"payment_id": req.PaymentID, "amount": order.Amount, "project_id": project.ID})
	})
	if err != nil {
		return nil, err
	}
	if rejected {
		return nil, validationError("payment signature verification failed for order %s", order.OrderID)
	}
	if project != nil {
		publishUpdate(s.publisher, project, project.Updates[0])
	}
	return toVerifyResponse(order), nil
}
