package service

import (
	"context"
	"errors"
	"testing"

	"vastustructural/internal/catalog"
	"vastustructural/internal/model"
	"vastustructural/internal/payment"
)

func newCheckout(f *fixture) (CheckoutService, *payment.Sandbox) {
	gw := payment.NewSandbox("")
	return NewCheckoutService(f.store, catalog.MustDefault(), gw, f.publisher), gw
}

func validCheckout() CheckoutRequest {
	return CheckoutRequest{
		PlanType:      model.PlanPremium,
		CustomerName:  "Meera Iyer",
		CustomerPhone: "9123456789",
		CustomerEmail: "meera@example.com",
		PlotSize:      "1200 sq ft",
		Facing:        "North-East",
		Floors:        2,
	}
}

func TestPlans(t *testing.T) {
	f := newFixture(t)
	svc, _ := newCheckout(f)
	plans := svc.Plans()
	if len(plans) != 3 {
		t.Fatalf("plans: got %d, want 3", len(plans))
	}
	for _, p := range plans {
		if p.Currency != "INR" || !p.Breakdown.Base.Add(p.Breakdown.GST).Equal(p.Breakdown.Total) {
			t.Errorf("plan %s: %+v", p.Type, p.Breakdown)
		}
	}
}

func TestCheckoutAndVerify(t *testing.T) {
	f := newFixture(t)
	svc, gw := newCheckout(f)
	ctx := context.Background()

	co, err := svc.CreateCheckout(ctx, validCheckout())
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if !IsOrderID(co.OrderID) || co.Amount != 19999 || co.AmountMinor != 1999900 || co.KeyID == "" {
		t.Errorf("checkout: %+v", co)
	}

	req := VerifyPaymentRequest{
		GatewayOrderID: co.GatewayOrderID,
		PaymentID:      "pay_123",
		Signature:      gw.Sign(co.GatewayOrderID, "pay_123"),
	}
	res, err := svc.VerifyPayment(ctx, req)
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if res.Status != model.CheckoutPaid || res.OrderID != co.OrderID || res.ProjectID == "" {
		t.Errorf("verify: %+v", res)
	}

	project, err := f.store.Projects.GetByOrderID(ctx, co.OrderID)
	if err != nil {
		t.Fatalf("project not created: %v", err)
	}
	if project.Status != model.StatusOrderPlaced || len(project.Updates) != 1 || project.Updates[0].CreatedBy != model.RoleSystem {
		t.Errorf("project: status %q, updates %+v", project.Status, project.Updates)
	}
	if project.Amount != 19999 || project.Facing != "north-east" || project.Floors != 2 {
		t.Errorf("project fields: %+v", project)
	}

	// a repeated callback resolves to the same project
	again, err := svc.VerifyPayment(ctx, req)
	if err != nil || again.ProjectID != res.ProjectID {
		t.Errorf("second verify: (%+v, %v)", again, err)
	}
	all, _ := f.store.Projects.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("projects: got %d, want 1", len(all))
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	svc, _ := newCheckout(f)
	ctx := context.Background()

	co, err := svc.CreateCheckout(ctx, validCheckout())
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.VerifyPayment(ctx, VerifyPaymentRequest{GatewayOrderID: co.GatewayOrderID, PaymentID: "pay_1", Signature: "forged"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("err: got %v, want ErrValidation", err)
	}
	if all, _ := f.store.Projects.GetAll(ctx); len(all) != 0 {
		t.Errorf("a project was created for a forged payment")
	}
	order, err := f.store.Checkouts.FindForUpdate(ctx, co.GatewayOrderID)
	if err != nil || order.Status != model.CheckoutFailed {
		t.Errorf("checkout status: (%v, %v), want failed", order, err)
	}

	if _, err := svc.VerifyPayment(ctx, VerifyPaymentRequest{GatewayOrderID: "order_missing"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown order: got %v, want ErrNotFound", err)
	}
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture(t)
	svc, _ := newCheckout(f)
	tests := []struct {
		name   string
		mutate func(r *CheckoutRequest)
	}{
		{"unknown plan", func(r *CheckoutRequest) { r.PlanType = "gold" }},
		{"blank name", func(r *CheckoutRequest) { r.CustomerName = "  " }},
		{"bad phone", func(r *CheckoutRequest) { r.CustomerPhone = "12" }},
		{"bad facing", func(r *CheckoutRequest) { r.Facing = "up" }},
		{"too many floors", func(r *CheckoutRequest) { r.Floors = 40 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCheckout()
			tt.mutate(&req)
			if _, err := svc.CreateCheckout(context.Background(), req); !errors.Is(err, model.ErrValidation) {
				t.Errorf("err: got %v, want ErrValidation", err)
			}
		})
	}
}
