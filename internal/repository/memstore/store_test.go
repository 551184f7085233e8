package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

func seedProject(t *testing.T, store *repository.Store, orderID string) *model.Project {
	t.Helper()
	p := &model.Project{
		OrderID:       orderID,
		CustomerName:  "Ravi Kumar",
		CustomerPhone: "9876543210",
		CustomerEmail: "ravi@example.com",
		PlanType:      model.PlanStandard,
		PlanName:      "Standard Plan",
		Amount:        9999,
		Facing:        "east",
		Floors:        2,
		Status:        model.StatusOrderPlaced,
		Updates: []model.ProjectUpdate{{
			Seq:       1,
			Kind:      model.UpdateKindTransition,
			Status:    model.StatusOrderPlaced,
			Message:   "Order placed",
			CreatedBy: model.RoleSystem,
		}},
	}
	if err := store.Projects.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestProjects_CreateAndGet(t *testing.T) {
	store := MustNew()
	ctx := context.Background()
	p := seedProject(t, store, "VSAB12CD")

	got, err := store.Projects.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OrderID != "VSAB12CD" || got.Status != model.StatusOrderPlaced {
		t.Errorf("got %+v", got)
	}
	if len(got.Updates) != 1 || got.Updates[0].ID == "" || got.Updates[0].ProjectID != p.ID {
		t.Errorf("seed update not stamped: %+v", got.Updates)
	}

	byOrder, err := store.Projects.GetByOrderID(ctx, "VSAB12CD")
	if err != nil || byOrder.ID != p.ID {
		t.Errorf("GetByOrderID: got (%v, %v)", byOrder, err)
	}

	// reads hand out copies
	got.Updates[0].Message = "tampered"
	again, _ := store.Projects.GetByID(ctx, p.ID)
	if again.Updates[0].Message != "Order placed" {
		t.Error("GetByID shares slices with the store")
	}
}

func TestProjects_GetByIDMissing(t *testing.T) {
	store := MustNew()
	got, err := store.Projects.GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err: got %v, want ErrNotFound", err)
	}
	if got != nil {
		t.Errorf("got a record for a missing id: %+v", got)
	}
}

func TestProjects_DuplicateOrderID(t *testing.T) {
	store := MustNew()
	seedProject(t, store, "VSAAAAAA")
	dup := &model.Project{OrderID: "VSAAAAAA", Status: model.StatusOrderPlaced}
	if err := store.Projects.Create(context.Background(), dup); !errors.Is(err, model.ErrConflict) {
		t.Errorf("err: got %v, want ErrConflict", err)
	}
}

func TestProjects_UpdateMergesAndBumpsTimestamp(t *testing.T) {
	store := MustNew()
	ctx := context.Background()
	p := seedProject(t, store, "VSUPD001")
	before, _ := store.Projects.GetByID(ctx, p.ID)

	time.Sleep(2 * time.Millisecond)
	name := "Ravi K."
	floors := 3
	got, err := store.Projects.Update(ctx, p.ID, model.ProjectPatch{CustomerName: &name, Floors: &floors})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.CustomerName != "Ravi K." || got.Floors != 3 {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.CustomerEmail != "ravi@example.com" || got.Facing != "east" {
		t.Error("untouched fields changed")
	}
	if !got.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt not bumped: before %v, after %v", before.UpdatedAt, got.UpdatedAt)
	}
	if len(got.Updates) != 1 || got.Status != model.StatusOrderPlaced {
		t.Error("a patch must not touch the lifecycle")
	}
}

func TestProjects_UpdateMissingFailsLoudly(t *testing.T) {
	store := MustNew()
	name := "x"
	_, err := store.Projects.Update(context.Background(), "missing", model.ProjectPatch{CustomerName: &name})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("err: got %v, want ErrNotFound", err)
	}
}

func TestProjects_ApplyRollsBackOnError(t *testing.T) {
	store := MustNew()
	ctx := context.Background()
	p := seedProject(t, store, "VSROLL01")

	boom := errors.New("boom")
	_, err := store.Projects.Apply(ctx, p.ID, func(project *model.Project) error {
		project.Status = model.StatusCompleted
		project.Updates = append(project.Updates, model.ProjectUpdate{Seq: 2, Status: model.StatusCompleted})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err: got %v, want boom", err)
	}
	got, _ := store.Projects.GetByID(ctx, p.ID)
	if got.Status != model.StatusOrderPlaced || len(got.Updates) != 1 {
		t.Errorf("failed Apply leaked state: status %s, %d updates", got.Status, len(got.Updates))
	}
}

func TestProjects_ApplyRejectsHistoryRewrite(t *testing.T) {
	store := MustNew()
	p := seedProject(t, store, "VSHIST01")
	_, err := store.Projects.Apply(context.Background(), p.ID, func(project *model.Project) error {
		project.Updates = nil
		return nil
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("err: got %v, want ErrValidation", err)
	}
}

func TestProjects_ListFiltersAndContractorIndex(t *testing.T) {
	store := MustNew()
	ctx := context.Background()
	a := seedProject(t, store, "VSLIST01")
	seedProject(t, store, "VSLIST02")

	contractorID := "c-1"
	if _, err := store.Projects.Apply(ctx, a.ID, func(project *model.Project) error {
		project.AssignedContractorID = &contractorID
		project.Status = model.StatusContractorAssigned
		project.Updates = append(project.Updates, model.ProjectUpdate{Seq: 2, Status: model.StatusContractorAssigned, Message: "assigned"})
		return nil
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	assigned, err := store.Projects.ListByContractor(ctx, contractorID)
	if err != nil || len(assigned) != 1 || assigned[0].ID != a.ID {
		t.Fatalf("ListByContractor: got %d projects, err %v", len(assigned), err)
	}
	if n, _ := store.Projects.CountByContractor(ctx, contractorID); n != 1 {
		t.Errorf("CountByContractor: got %d, want 1", n)
	}

	rows, total, err := store.Projects.List(ctx, repository.ProjectFilter{Status: model.StatusOrderPlaced, Page: 1, Limit: 10})
	if err != nil || total != 1 || rows[0].OrderID != "VSLIST02" {
		t.Errorf("List by status: total %d, err %v", total, err)
	}
	_, total, _ = store.Projects.List(ctx, repository.ProjectFilter{Search: "vslist", Page: 1, Limit: 1})
	if total != 2 {
		t.Errorf("List search: total %d, want 2", total)
	}
}

func TestTransactionManager_RollsBackEveryWrite(t *testing.T) {
	store := MustNew()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := store.Leads.Create(txCtx, &model.Lead{Name: "A", Phone: "1", Source: model.LeadSourceContactForm}); err != nil {
			return err
		}
		if err := store.Contractors.Create(txCtx, &model.Contractor{Name: "B", Phone: "2", ReferralCode: "BBBB1234"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err: got %v", err)
	}
	if _, total, _ := store.Leads.List(ctx, "", 1, 10); total != 0 {
		t.Errorf("lead survived rollback")
	}
	if _, err := store.Contractors.GetByReferralCode(ctx, "BBBB1234"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("contractor survived rollback: %v", err)
	}
}

func TestContractors_ReferralCodeUniqueAndCaseInsensitive(t *testing.T) {
	store := MustNew()
	ctx := context.Background()
	if err := store.Contractors.Create(ctx, &model.Contractor{Name: "Asha", Phone: "1", ReferralCode: "ASHA7Q2K"}); err != nil {
		t.Fatal(err)
	}
	err := store.Contractors.Create(ctx, &model.Contractor{Name: "Asha", Phone: "2", ReferralCode: "ASHA7Q2K"})
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("err: got %v, want ErrConflict", err)
	}
	got, err := store.Contractors.GetByReferralCode(ctx, "asha7q2k")
	if err != nil || got.Status != model.ContractorPending {
		t.Errorf("lookup: got (%+v, %v)", got, err)
	}

	approved := model.ContractorApproved
	if _, err := store.Contractors.Update(ctx, got.ID, model.ContractorPatch{Status: &approved}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Contractors.Update(ctx, "missing", model.ContractorPatch{Status: &approved}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("update missing: got %v, want ErrNotFound", err)
	}
}

func TestProject_JSONRoundTrip(t *testing.T) {
	store := MustNew()
	p := seedProject(t, store, "VSJSON01")
	stored, err := store.Projects.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		t.Fatal(err)
	}
	var back model.Project
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}

	if back.ID != stored.ID || back.OrderID != stored.OrderID || back.Amount != stored.Amount ||
		back.Status != stored.Status || back.Floors != stored.Floors || back.CustomerEmail != stored.CustomerEmail {
		t.Errorf("scalar fields differ: %+v vs %+v", back, stored)
	}
	if !back.CreatedAt.Equal(stored.CreatedAt) || !back.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Errorf("timestamps lost precision: %v vs %v", back.CreatedAt, stored.CreatedAt)
	}
	if len(back.Updates) != 1 || !back.Updates[0].CreatedAt.Equal(stored.Updates[0].CreatedAt) ||
		back.Updates[0].Kind != model.UpdateKindTransition {
		t.Errorf("updates differ: %+v", back.Updates)
	}
}
