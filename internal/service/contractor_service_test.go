package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func newContractorService(f *fixture) ContractorService {
	return NewContractorService(f.store, NewTokenIssuer(testSecret, time.Hour))
}

func TestReferralPrefix(t *testing.T) {
	tests := []struct{ name, want string }{
		{"Asha Rao", "ASHA"},
		{"Li", "LIVV"},
		{"  o'Neil & Sons", "ONEI"},
		{"1234", "VVVV"},
	}
	for _, tt := range tests {
		if got := referralPrefix(tt.name); got != tt.want {
			t.Errorf("referralPrefix(%q): got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"98765 43210", "9876543210", false},
		{"+91-98765-43210", "9876543210", false},
		{"12345", "", true},
	}
	for _, tt := range tests {
		got, err := normalizePhone(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("normalizePhone(%q): got (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestRegisterContractor(t *testing.T) {
	f := newFixture(t)
	svc := newContractorService(f)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterContractorRequest{Name: "Asha Rao", Company: "Rao Designs", Phone: "+91 98765 43210", District: "Pune"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Status != model.ContractorPending {
		t.Errorf("status: got %q, want pending", res.Status)
	}
	if !strings.HasPrefix(res.ReferralCode, "ASHA") || len(res.ReferralCode) != 8 {
		t.Errorf("referral code %q", res.ReferralCode)
	}
	if res.Phone != "9876543210" {
		t.Errorf("phone: got %q", res.Phone)
	}

	logs, total, err := f.store.Audit.List(ctx, repository.AuditFilter{Page: 1, Limit: 10})
	if err != nil || total != 1 || logs[0].Action != model.ActionRegisterContractor {
		t.Errorf("audit: total %d, err %v", total, err)
	}

	if _, err := svc.Register(ctx, RegisterContractorRequest{Name: "X", Phone: "123"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("short phone: got %v, want ErrValidation", err)
	}
	if _, err := svc.Register(ctx, RegisterContractorRequest{Name: "X", Phone: "9876543210", Email: "not-an-email"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad email: got %v, want ErrValidation", err)
	}
}

func TestApproveAndRejectOnlyFromPending(t *testing.T) {
	f := newFixture(t)
	svc := newContractorService(f)
	ctx := context.Background()

	a, _ := svc.Register(ctx, RegisterContractorRequest{Name: "Asha", Phone: "9876543210"})
	b, _ := svc.Register(ctx, RegisterContractorRequest{Name: "Bala", Phone: "9876543211"})

	approved, err := svc.Approve(ctx, a.ID, admin)
	if err != nil || approved.Status != model.ContractorApproved {
		t.Fatalf("Approve: (%+v, %v)", approved, err)
	}
	if _, err := svc.Reject(ctx, a.ID, "duplicate", admin); !errors.Is(err, model.ErrValidation) {
		t.Errorf("reject approved: got %v, want ErrValidation", err)
	}
	rejected, err := svc.Reject(ctx, b.ID, "outside service area", admin)
	if err != nil || rejected.Status != model.ContractorRejected {
		t.Fatalf("Reject: (%+v, %v)", rejected, err)
	}
	if _, err := svc.Approve(ctx, "ghost", admin); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("approve missing: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Approve(ctx, b.ID, SystemActor); !errors.Is(err, model.ErrForbiddenTransition) {
		t.Errorf("non-admin approve: got %v, want ErrForbiddenTransition", err)
	}

	logs, _, _ := f.store.Audit.List(ctx, repository.AuditFilter{Page: 1, Limit: 10})
	actions := map[string]int{}
	for _, l := range logs {
		actions[l.Action]++
	}
	if actions[model.ActionApproveContractor] != 1 || actions[model.ActionRejectContractor] != 1 {
		t.Errorf("audit actions: %v", actions)
	}

	history, total, err := NewAuditService(f.store.Audit).GetAuditLogs(ctx, repository.AuditFilter{EntityID: b.ID, Page: 1, Limit: 10})
	if err != nil || total != 2 {
		t.Fatalf("history of %s: %d entries, %v", b.Name, total, err)
	}
	if history[0].Action != model.ActionRejectContractor || history[0].Details["reason"] != "outside service area" {
		t.Errorf("newest entry: %+v", history[0])
	}
	if _, total, _ := NewAuditService(f.store.Audit).GetAuditLogs(ctx, repository.AuditFilter{Action: "approve_contractor"}); total != 1 {
		t.Errorf("approvals: got %d, want 1", total)
	}
}

func TestContractorProjectCountIsDerived(t *testing.T) {
	f := newFixture(t)
	svc := newContractorService(f)
	ctx := context.Background()

	c := f.approvedContractor(t, "Asha Rao", "Rao Designs")
	for i := 0; i < 2; i++ {
		p := f.newProject(t)
		if _, err := f.engine.AssignContractor(ctx, p.ID, c.ID, admin); err != nil {
			t.Fatal(err)
		}
	}
	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ProjectCount != 2 {
		t.Errorf("project count: got %d, want 2", got.ProjectCount)
	}

	list, total, err := svc.List(ctx, model.ContractorApproved, "", 1, 10)
	if err != nil || total != 1 || list[0].ProjectCount != 2 {
		t.Errorf("List: total %d, err %v, %+v", total, err, list)
	}
}

func TestContractorLogin(t *testing.T) {
	f := newFixture(t)
	svc := newContractorService(f)
	ctx := context.Background()

	reg, _ := svc.Register(ctx, RegisterContractorRequest{Name: "Asha", Phone: "9876543210"})
	login := ContractorLoginRequest{Phone: "98765 43210", ReferralCode: strings.ToLower(reg.ReferralCode)}

	if _, err := svc.Login(ctx, login); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("pending login: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Approve(ctx, reg.ID, admin); err != nil {
		t.Fatal(err)
	}

	tok, err := svc.Login(ctx, login)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (interface{}, error) { return testSecret, nil }); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != reg.ID || claims["role"] != string(model.RoleContractor) {
		t.Errorf("claims: %v", claims)
	}

	if _, err := svc.Login(ctx, ContractorLoginRequest{Phone: "9999999999", ReferralCode: reg.ReferralCode}); !errors.Is(err, model.ErrUnauthorized) {
		t.Errorf("wrong phone: got %v, want ErrUnauthorized", err)
	}
}
