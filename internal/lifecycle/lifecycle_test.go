package lifecycle

import (
	"testing"

	"vastustructural/internal/model"
)

func TestAllStatuses_CanonicalOrder(t *testing.T) {
	got := AllStatuses()
	want := []model.Status{
		model.StatusOrderPlaced,
		model.StatusDetailsSubmitted,
		model.StatusInReview,
		model.StatusContractorAssigned,
		model.StatusDesignInProgress,
		model.StatusReviewPending,
		model.StatusCompleted,
	}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllStatuses[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	// callers must not be able to reorder the registry
	got[0] = model.StatusCompleted
	if AllStatuses()[0] != model.StatusOrderPlaced {
		t.Error("AllStatuses returned the backing slice")
	}
}

func TestMetadata_DefinedForEveryStatus(t *testing.T) {
	for _, s := range KnownStatuses() {
		m := Metadata(s)
		if m.Label == "" || m.Label == string(s) {
			t.Errorf("Metadata(%q): missing label", s)
		}
		switch m.Category {
		case CategoryInfo, CategoryWarning, CategorySuccess:
		default:
			t.Errorf("Metadata(%q): unexpected category %q", s, m.Category)
		}
	}
	if len(KnownStatuses()) != 8 {
		t.Errorf("KnownStatuses: got %d entries, want 8", len(KnownStatuses()))
	}
	if Metadata(model.StatusCompleted).Category != CategorySuccess {
		t.Error("completed should be a success status")
	}
}

func TestRank(t *testing.T) {
	tests := []struct {
		status model.Status
		want   int
		ok     bool
	}{
		{model.StatusOrderPlaced, 0, true},
		{model.StatusDesignInProgress, 4, true},
		{model.StatusReviewPending, 5, true},
		{model.StatusRevisions, 4, true},
		{model.StatusCompleted, 6, true},
		{model.Status("archived"), -1, false},
	}
	for _, tt := range tests {
		got, ok := Rank(tt.status)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Rank(%q): got (%d, %v), want (%d, %v)", tt.status, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProgress(t *testing.T) {
	if step, pct := Progress(model.StatusOrderPlaced); step != 0 || pct != 14 {
		t.Errorf("order_placed: got (%d, %d), want (0, 14)", step, pct)
	}
	if step, pct := Progress(model.StatusCompleted); step != 6 || pct != 100 {
		t.Errorf("completed: got (%d, %d), want (6, 100)", step, pct)
	}
	if step, _ := Progress(model.StatusRevisions); step != 4 {
		t.Errorf("revisions step: got %d, want 4", step)
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	tests := []struct {
		name string
		role model.ActorRole
		from model.Status
		to   model.Status
		want bool
	}{
		{"admin override backwards", model.RoleAdmin, model.StatusCompleted, model.StatusOrderPlaced, true},
		{"admin to revisions", model.RoleAdmin, model.StatusReviewPending, model.StatusRevisions, true},
		{"system forward", model.RoleSystem, model.StatusOrderPlaced, model.StatusDetailsSubmitted, true},
		{"admin unknown target", model.RoleAdmin, model.StatusOrderPlaced, model.Status("shipped"), false},
		{"contractor forward", model.RoleContractor, model.StatusContractorAssigned, model.StatusDesignInProgress, true},
		{"contractor skip ahead", model.RoleContractor, model.StatusContractorAssigned, model.StatusCompleted, true},
		{"contractor backwards", model.RoleContractor, model.StatusDesignInProgress, model.StatusOrderPlaced, false},
		{"contractor outside allow-list", model.RoleContractor, model.StatusOrderPlaced, model.StatusInReview, false},
		{"contractor to revisions", model.RoleContractor, model.StatusReviewPending, model.StatusRevisions, false},
		{"contractor resubmits after revisions", model.RoleContractor, model.StatusRevisions, model.StatusReviewPending, true},
		{"contractor back to design from revisions", model.RoleContractor, model.StatusRevisions, model.StatusDesignInProgress, false},
		{"contractor equal rank", model.RoleContractor, model.StatusReviewPending, model.StatusReviewPending, true},
		{"contractor after completed", model.RoleContractor, model.StatusCompleted, model.StatusReviewPending, false},
		{"comment for every role", model.RoleSystem, model.StatusInReview, model.StatusInReview, true},
		{"unknown role", model.ActorRole("client"), model.StatusInReview, model.StatusInReview, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tt.role, tt.from, tt.to); got != tt.want {
				t.Errorf("IsTransitionAllowed(%s, %s, %s): got %v, want %v", tt.role, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestAllowedTargets(t *testing.T) {
	got := AllowedTargets(model.RoleContractor, model.StatusDesignInProgress)
	want := []model.Status{model.StatusReviewPending, model.StatusCompleted}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	if n := len(AllowedTargets(model.RoleAdmin, model.StatusOrderPlaced)); n != 7 {
		t.Errorf("admin targets: got %d, want 7", n)
	}
}

func TestKindFor(t *testing.T) {
	if KindFor(model.StatusInReview, model.StatusInReview) != model.UpdateKindComment {
		t.Error("same status should be a comment")
	}
	if KindFor(model.StatusInReview, model.StatusCompleted) != model.UpdateKindTransition {
		t.Error("status change should be a transition")
	}
}
