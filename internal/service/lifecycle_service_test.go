package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"
	"vastustructural/internal/repository/memstore"
	ws "vastustructural/internal/websocket"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(event ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var (
	admin = Actor{Role: model.RoleAdmin, ID: "admin-1", Name: "Priya"}
)

type fixture struct {
	store     *repository.Store
	engine    LifecycleService
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.MustNew()
	pub := &recordingPublisher{}
	return &fixture{store: store, engine: NewLifecycleService(store, pub), publisher: pub}
}

func (f *fixture) newProject(t *testing.T) *model.Project {
	t.Helper()
	p, err := f.engine.CreateProject(context.Background(), NewProjectInput{
		CustomerName:  "Ravi Kumar",
		CustomerPhone: "9876543210",
		CustomerEmail: "ravi@example.com",
		PlanType:      model.PlanStandard,
		Amount:        9999,
		Facing:        "east",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func (f *fixture) approvedContractor(t *testing.T, name, company string) *model.Contractor {
	t.Helper()
	c := &model.Contractor{
		Name:         name,
		Company:      company,
		Phone:        "9000000001",
		District:     "Pune",
		Status:       model.ContractorApproved,
		ReferralCode: strings.ToUpper(name[:3]) + fmt.Sprint(len(name)) + "X1Y2",
	}
	if err := f.store.Contractors.Create(context.Background(), c); err != nil {
		t.Fatalf("create contractor: %v", err)
	}
	return c
}

func (f *fixture) reload(t *testing.T, id string) *model.Project {
	t.Helper()
	p, err := f.store.Projects.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return p
}

// assertConsistent checks that status always mirrors the newest log entry.
func assertConsistent(t *testing.T, p *model.Project) {
	t.Helper()
	last := p.LastUpdate()
	if last == nil {
		t.Fatal("project has no updates")
	}
	if last.Status != p.Status {
		t.Errorf("status %q differs from last update status %q", p.Status, last.Status)
	}
	for i, u := range p.Updates {
		if u.Seq != i+1 {
			t.Errorf("updates[%d].Seq = %d, want %d", i, u.Seq, i+1)
		}
	}
}

// advance walks a project to the given status as admin.
func (f *fixture) advance(t *testing.T, id string, to model.Status) {
	t.Helper()
	if _, err := f.engine.Transition(context.Background(), id, to, "moving to "+string(to), admin); err != nil {
		t.Fatalf("Transition to %s: %v", to, err)
	}
}

func TestCreateProject_SeedsOrderPlaced(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)

	if p.Status != model.StatusOrderPlaced {
		t.Errorf("status: got %q, want order_placed", p.Status)
	}
	if !IsOrderID(p.OrderID) {
		t.Errorf("order id %q is not VS + 6 alphanumerics", p.OrderID)
	}
	if len(p.Updates) != 1 || p.Updates[0].CreatedBy != model.RoleSystem || p.Updates[0].Status != model.StatusOrderPlaced {
		t.Errorf("seed update: %+v", p.Updates)
	}
	if p.PlanName != "Standard Plan" || p.Floors != 1 {
		t.Errorf("defaults not applied: plan %q floors %d", p.PlanName, p.Floors)
	}
	if f.publisher.count() != 1 {
		t.Errorf("published %d events, want 1", f.publisher.count())
	}
}

func TestCreateProject_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   NewProjectInput
	}{
		{"missing name", NewProjectInput{CustomerPhone: "1", PlanType: model.PlanBasic}},
		{"missing phone", NewProjectInput{CustomerName: "A", PlanType: model.PlanBasic}},
		{"unknown plan", NewProjectInput{CustomerName: "A", CustomerPhone: "1", PlanType: "gold"}},
		{"bad order id", NewProjectInput{CustomerName: "A", CustomerPhone: "1", PlanType: model.PlanBasic, OrderID: "XY123"}},
		{"negative amount", NewProjectInput{CustomerName: "A", CustomerPhone: "1", PlanType: model.PlanBasic, Amount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.engine.CreateProject(context.Background(), tt.in); !errors.Is(err, model.ErrValidation) {
				t.Errorf("err: got %v, want ErrValidation", err)
			}
		})
	}
}

func TestTransition_AdminMovesToInReview(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)

	u, err := f.engine.Transition(context.Background(), p.ID, model.StatusInReview, "Reviewing plot", admin)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if u.Status != model.StatusInReview || u.CreatedBy != model.RoleAdmin || u.Kind != model.UpdateKindTransition || u.Seq != 2 {
		t.Errorf("update: %+v", u)
	}

	got := f.reload(t, p.ID)
	if got.Status != model.StatusInReview {
		t.Errorf("status: got %q, want in_review", got.Status)
	}
	if len(got.Updates) != 2 {
		t.Errorf("updates: got %d, want 2", len(got.Updates))
	}
	assertConsistent(t, got)
}

func TestTransition_AdminOverrideBackwards(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)
	f.advance(t, p.ID, model.StatusCompleted)
	f.advance(t, p.ID, model.StatusRevisions)
	f.advance(t, p.ID, model.StatusOrderPlaced)

	got := f.reload(t, p.ID)
	if got.Status != model.StatusOrderPlaced || len(got.Updates) != 4 {
		t.Errorf("got status %q with %d updates", got.Status, len(got.Updates))
	}
	assertConsistent(t, got)
}

func TestTransition_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		status  model.Status
		message string
		actor   Actor
		want    error
	}{
		{"unknown status", p.ID, "shipped", "x", admin, model.ErrInvalidStatus},
		{"empty message admin", p.ID, model.StatusInReview, "", admin, model.ErrValidation},
		{"blank message system", p.ID, model.StatusInReview, "   \t", SystemActor, model.ErrValidation},
		{"blank message contractor", p.ID, model.StatusDesignInProgress, " ", Actor{Role: model.RoleContractor, ID: "c"}, model.ErrValidation},
		{"unknown role", p.ID, model.StatusInReview, "x", Actor{Role: "client"}, model.ErrValidation},
		{"missing project", "nope", model.StatusInReview, "x", admin, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Transition(ctx, tt.id, tt.status, tt.message, tt.actor)
			if !errors.Is(err, tt.want) {
				t.Errorf("err: got %v, want %v", err, tt.want)
			}
		})
	}

	got := f.reload(t, p.ID)
	if got.Status != model.StatusOrderPlaced || len(got.Updates) != 1 {
		t.Errorf("rejected calls mutated the project: status %q, %d updates", got.Status, len(got.Updates))
	}
}

func TestAssignContractor(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)
	c := f.approvedContractor(t, "Asha Rao", "Rao Designs")

	u, err := f.engine.AssignContractor(context.Background(), p.ID, c.ID, admin)
	if err != nil {
		t.Fatalf("AssignContractor: %v", err)
	}
	if !strings.Contains(u.Message, "Asha Rao") || !strings.Contains(u.Message, "Rao Designs") {
		t.Errorf("message %q does not name the contractor and company", u.Message)
	}

	got := f.reload(t, p.ID)
	if got.Status != model.StatusContractorAssigned {
		t.Errorf("status: got %q", got.Status)
	}
	if got.AssignedContractorID == nil || *got.AssignedContractorID != c.ID {
		t.Errorf("assigned contractor: got %v, want %s", got.AssignedContractorID, c.ID)
	}
	if len(got.Updates) != 2 {
		t.Errorf("updates: got %d, want exactly one appended", len(got.Updates))
	}
	assertConsistent(t, got)
}

func TestAssignContractor_Reassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t)
	first := f.approvedContractor(t, "Asha Rao", "Rao Designs")
	second := f.approvedContractor(t, "Bhavna Iyer", "B Co")

	if _, err := f.engine.AssignContractor(ctx, p.ID, first.ID, admin); err != nil {
		t.Fatal(err)
	}
	u, err := f.engine.AssignContractor(ctx, p.ID, second.ID, admin)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if u.Kind != model.UpdateKindTransition || u.Status != model.StatusContractorAssigned {
		t.Errorf("reassign update: kind %q status %q, want transition to contractor_assigned", u.Kind, u.Status)
	}
	if !strings.Contains(u.Message, "Bhavna Iyer") {
		t.Errorf("message %q does not name the new contractor", u.Message)
	}

	got := f.reload(t, p.ID)
	if got.AssignedContractorID == nil || *got.AssignedContractorID != second.ID {
		t.Errorf("assigned contractor: got %v, want %s", got.AssignedContractorID, second.ID)
	}
	if len(got.Updates) != 3 {
		t.Errorf("updates: got %d, want 3", len(got.Updates))
	}
	for _, c := range []struct {
		id   string
		want int64
	}{{first.ID, 0}, {second.ID, 1}} {
		n, err := f.store.Projects.CountByContractor(ctx, c.id)
		if err != nil || n != c.want {
			t.Errorf("projects of %s: got (%d, %v), want %d", c.id, n, err, c.want)
		}
	}
	assertConsistent(t, got)
}

func TestAssignContractor_Rejections(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)
	ctx := context.Background()

	pending := &model.Contractor{Name: "Neel", Phone: "1", ReferralCode: "NEEL0001", Status: model.ContractorPending}
	if err := f.store.Contractors.Create(ctx, pending); err != nil {
		t.Fatal(err)
	}
	approved := f.approvedContractor(t, "Asha Rao", "")

	if _, err := f.engine.AssignContractor(ctx, p.ID, pending.ID, admin); !errors.Is(err, model.ErrValidation) {
		t.Errorf("pending contractor: got %v, want ErrValidation", err)
	}
	if _, err := f.engine.AssignContractor(ctx, p.ID, "ghost", admin); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown contractor: got %v, want ErrNotFound", err)
	}
	if _, err := f.engine.AssignContractor(ctx, "ghost", approved.ID, admin); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown project: got %v, want ErrNotFound", err)
	}
	contractorActor := Actor{Role: model.RoleContractor, ID: approved.ID}
	if _, err := f.engine.AssignContractor(ctx, p.ID, approved.ID, contractorActor); !errors.Is(err, model.ErrForbiddenTransition) {
		t.Errorf("contractor assigning: got %v, want ErrForbiddenTransition", err)
	}

	if got := f.reload(t, p.ID); len(got.Updates) != 1 || got.AssignedContractorID != nil {
		t.Errorf("rejected assignments mutated the project: %+v", got)
	}
}

func TestContractorTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t)
	c := f.approvedContractor(t, "Asha Rao", "Rao Designs")
	if _, err := f.engine.AssignContractor(ctx, p.ID, c.ID, admin); err != nil {
		t.Fatal(err)
	}
	contractor := Actor{Role: model.RoleContractor, ID: c.ID, Name: c.Name}

	if _, err := f.engine.Transition(ctx, p.ID, model.StatusDesignInProgress, "Started drafting", contractor); err != nil {
		t.Fatalf("forward transition: %v", err)
	}

	// backwards is refused and leaves no trace
	before := f.reload(t, p.ID)
	_, err := f.engine.Transition(ctx, p.ID, model.StatusOrderPlaced, "undo", contractor)
	if !errors.Is(err, model.ErrForbiddenTransition) {
		t.Fatalf("backward transition: got %v, want ErrForbiddenTransition", err)
	}
	after := f.reload(t, p.ID)
	if after.Status != model.StatusDesignInProgress || len(after.Updates) != len(before.Updates) {
		t.Errorf("rejected transition changed state: %q, %d -> %d updates", after.Status, len(before.Updates), len(after.Updates))
	}

	// re-sending the current status is not a move; notes go through PostComment
	if _, err := f.engine.Transition(ctx, p.ID, model.StatusDesignInProgress, "still drafting", contractor); !errors.Is(err, model.ErrForbiddenTransition) {
		t.Errorf("same-status transition: got %v, want ErrForbiddenTransition", err)
	}
	if got := f.reload(t, p.ID); len(got.Updates) != len(after.Updates) {
		t.Errorf("same-status transition appended an update: %d -> %d", len(after.Updates), len(got.Updates))
	}

	// comments keep the status
	u, err := f.engine.PostComment(ctx, p.ID, "Ground floor layout done", contractor)
	if err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if u.Kind != model.UpdateKindComment || u.Status != model.StatusDesignInProgress {
		t.Errorf("comment update: %+v", u)
	}

	if _, err := f.engine.Transition(ctx, p.ID, model.StatusReviewPending, "Ready for review", contractor); err != nil {
		t.Fatalf("submit for review: %v", err)
	}
	got := f.reload(t, p.ID)
	if got.Status != model.StatusReviewPending || len(got.Updates) != 5 {
		t.Errorf("got %q with %d updates", got.Status, len(got.Updates))
	}
	assertConsistent(t, got)
}

func TestContractorCannotTouchUnassignedProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t)
	f.advance(t, p.ID, model.StatusContractorAssigned)
	stranger := Actor{Role: model.RoleContractor, ID: "someone-else"}

	if _, err := f.engine.Transition(ctx, p.ID, model.StatusDesignInProgress, "mine now", stranger); !errors.Is(err, model.ErrForbiddenTransition) {
		t.Errorf("transition: got %v, want ErrForbiddenTransition", err)
	}
	if _, err := f.engine.PostComment(ctx, p.ID, "hello", stranger); !errors.Is(err, model.ErrForbiddenTransition) {
		t.Errorf("comment: got %v, want ErrForbiddenTransition", err)
	}
	if _, err := f.engine.AttachDeliverable(ctx, p.ID, DeliverableInput{Name: "a.pdf", Type: "pdf", URL: "/u/a.pdf"}, stranger); !errors.Is(err, model.ErrForbiddenTransition) {
		t.Errorf("upload: got %v, want ErrForbiddenTransition", err)
	}
}

func TestAttachDeliverable_KeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t)
	f.advance(t, p.ID, model.StatusDesignInProgress)
	before := f.reload(t, p.ID)

	d, err := f.engine.AttachDeliverable(ctx, p.ID, DeliverableInput{Name: "plan.pdf", Type: model.DeliverablePDF, URL: "/uploads/plan.pdf", Size: "2.4 MB"}, admin)
	if err != nil {
		t.Fatalf("AttachDeliverable: %v", err)
	}
	if d.ID == "" || d.UploadedBy != model.RoleAdmin || d.Name != "plan.pdf" {
		t.Errorf("deliverable: %+v", d)
	}

	got := f.reload(t, p.ID)
	if len(got.Deliverables) != len(before.Deliverables)+1 {
		t.Errorf("deliverables: got %d, want %d", len(got.Deliverables), len(before.Deliverables)+1)
	}
	if got.Status != model.StatusDesignInProgress {
		t.Errorf("status changed to %q", got.Status)
	}
	if len(got.Updates) != len(before.Updates)+1 {
		t.Errorf("updates: got %d, want %d", len(got.Updates), len(before.Updates)+1)
	}
	last := got.LastUpdate()
	if last.Kind != model.UpdateKindAttachment || last.Status != model.StatusDesignInProgress {
		t.Errorf("attachment entry: %+v", last)
	}
	assertConsistent(t, got)
}

func TestAttachDeliverable_Validation(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)
	tests := []struct {
		name  string
		in    DeliverableInput
		actor Actor
		want  error
	}{
		{"missing name", DeliverableInput{Type: "pdf", URL: "/x"}, admin, model.ErrValidation},
		{"missing url", DeliverableInput{Name: "a", Type: "pdf"}, admin, model.ErrValidation},
		{"bad type", DeliverableInput{Name: "a", Type: "exe", URL: "/x"}, admin, model.ErrValidation},
		{"system uploader", DeliverableInput{Name: "a", Type: "pdf", URL: "/x"}, SystemActor, model.ErrForbiddenTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.engine.AttachDeliverable(context.Background(), p.ID, tt.in, tt.actor); !errors.Is(err, tt.want) {
				t.Errorf("err: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConcurrentTransitionsKeepEveryUpdate(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := model.StatusInReview
			if i%2 == 0 {
				target = model.StatusDetailsSubmitted
			}
			if _, err := f.engine.Transition(context.Background(), p.ID, target, fmt.Sprintf("write %d", i), admin); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent transition: %v", err)
	}

	got := f.reload(t, p.ID)
	if len(got.Updates) != writers+1 {
		t.Errorf("updates: got %d, want %d", len(got.Updates), writers+1)
	}
	assertConsistent(t, got)
	if f.publisher.count() != writers+1 {
		t.Errorf("published %d events, want %d", f.publisher.count(), writers+1)
	}
}

func TestPublishedEventsAreScopedToAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t)
	c := f.approvedContractor(t, "Asha Rao", "")
	if _, err := f.engine.AssignContractor(ctx, p.ID, c.ID, admin); err != nil {
		t.Fatal(err)
	}

	f.publisher.mu.Lock()
	defer f.publisher.mu.Unlock()
	if n := len(f.publisher.events); n != 2 {
		t.Fatalf("events: got %d, want 2", n)
	}
	if f.publisher.events[0].ContractorID != "" {
		t.Errorf("seed event scoped to %q before assignment", f.publisher.events[0].ContractorID)
	}
	last := f.publisher.events[1]
	if last.ContractorID != c.ID || last.Type != EventProjectUpdate {
		t.Errorf("assignment event: %+v", last)
	}
	entry, ok := last.Data.(FeedEntry)
	if !ok || entry.Status != model.StatusContractorAssigned || entry.OrderID != p.OrderID {
		t.Errorf("event payload: %+v", last.Data)
	}
}
