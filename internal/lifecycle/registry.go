// Package lifecycle holds the project status registry and the rules for moving between statuses.
package lifecycle

import "vastustructural/internal/model"

// Category is the semantic color bucket of a status.
type Category string

const (
	CategoryInfo    Category = "info"
	CategoryWarning Category = "warning"
	CategorySuccess Category = "success"
)

// Meta is the display metadata of a status.
type Meta struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

// canonical is the forward progression used for timelines and rank comparisons.
// revisions is a side branch, not a step.
var canonical = []model.Status{
	model.StatusOrderPlaced,
	model.StatusDetailsSubmitted,
	model.StatusInReview,
	model.StatusContractorAssigned,
	model.StatusDesignInProgress,
	model.StatusReviewPending,
	model.StatusCompleted,
}

var metadata = map[model.Status]Meta{
	model.StatusOrderPlaced:        {Label: "Order Placed", Category: CategoryInfo},
	model.StatusDetailsSubmitted:   {Label: "Details Submitted", Category: CategoryInfo},
	model.StatusInReview:           {Label: "In Review", Category: CategoryWarning},
	model.StatusContractorAssigned: {Label: "Contractor Assigned", Category: CategoryInfo},
	model.StatusDesignInProgress:   {Label: "Design In Progress", Category: CategoryWarning},
	model.StatusReviewPending:      {Label: "Review Pending", Category: CategoryWarning},
	model.StatusRevisions:          {Label: "Revisions", Category: CategoryWarning},
	model.StatusCompleted:          {Label: "Completed", Category: CategorySuccess},
}

// revisions sorts with design_in_progress: the work goes back to the drawing board and the
// contractor moves it forward again by resubmitting for review.
var revisionsRankOf = model.StatusDesignInProgress

// AllStatuses returns the canonical ordered statuses (7 entries, no revisions).
func AllStatuses() []model.Status {
	return append([]model.Status(nil), canonical...)
}

// KnownStatuses returns every valid status id, canonical order first, then revisions.
func KnownStatuses() []model.Status {
	return append(AllStatuses(), model.StatusRevisions)
}

// IsValid reports whether s is one of the 8 status ids.
func IsValid(s model.Status) bool {
	_, ok := metadata[s]
	return ok
}

// Metadata returns the label and category for s. Unknown ids get their raw value as label.
func Metadata(s model.Status) Meta {
	if m, ok := metadata[s]; ok {
		return m
	}
	return Meta{Label: string(s), Category: CategoryInfo}
}

// Rank is the zero-based position of s in the canonical sequence.
func Rank(s model.Status) (int, bool) {
	if s == model.StatusRevisions {
		s = revisionsRankOf
	}
	for i, c := range canonical {
		if c == s {
			return i, true
		}
	}
	return -1, false
}

// Progress returns the timeline step of s and the share of the sequence it has covered.
func Progress(s model.Status) (step int, percent int) {
	rank, ok := Rank(s)
	if !ok {
		return 0, 0
	}
	return rank, (rank + 1) * 100 / len(canonical)
}

// StatusInfo is a registry entry as exposed to role views.
type StatusInfo struct {
	ID        model.Status `json:"id"`
	Label     string       `json:"label"`
	Category  Category     `json:"category"`
	Rank      int          `json:"rank"`
	Canonical bool         `json:"canonical"`
}

// Registry lists all statuses with their metadata.
func Registry() []StatusInfo {
	out := make([]StatusInfo, 0, len(metadata))
	for _, s := range KnownStatuses() {
		m := metadata[s]
		rank, _ := Rank(s)
		out = append(out, StatusInfo{
			ID:        s,
			Label:     m.Label,
			Category:  m.Category,
			Rank:      rank,
			Canonical: s != model.StatusRevisions,
		})
	}
	return out
}
