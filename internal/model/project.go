package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is a lifecycle stage of a Project.
type Status string

const (
	StatusOrderPlaced        Status = "order_placed"
	StatusDetailsSubmitted   Status = "details_submitted"
	StatusInReview           Status = "in_review"
	StatusContractorAssigned Status = "contractor_assigned"
	StatusDesignInProgress   Status = "design_in_progress"
	StatusReviewPending      Status = "review_pending"
	StatusRevisions          Status = "revisions"
	StatusCompleted          Status = "completed"
)

// ActorRole identifies who produced a change.
type ActorRole string

const (
	RoleSystem     ActorRole = "system"
	RoleAdmin      ActorRole = "admin"
	RoleContractor ActorRole = "contractor"
)

// UpdateKind tells a state change apart from a note or a file upload in the project log.
type UpdateKind string

const (
	UpdateKindTransition UpdateKind = "transition"
	UpdateKindComment    UpdateKind = "comment"
	UpdateKindAttachment UpdateKind = "attachment"
)

// Plan types sold on the site
const (
	PlanBasic    = "basic"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

// Deliverable file types
const (
	DeliverablePDF      = "pdf"
	DeliverableDWG      = "dwg"
	DeliverableImage    = "image"
	DeliverableDocument = "document"
)

// IsDeliverableType reports whether t is one of the accepted deliverable file types.
func IsDeliverableType(t string) bool {
	switch t {
	case DeliverablePDF, DeliverableDWG, DeliverableImage, DeliverableDocument:
		return true
	}
	return false
}

// Project is one customer order for a design package, tracked through the status lifecycle.
type Project struct {
	ID                   string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID              string          `gorm:"type:varchar(8);uniqueIndex;not null" json:"order_id"`
	CustomerName         string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone        string          `gorm:"type:varchar(20);not null;index" json:"customer_phone"`
	CustomerEmail        string          `gorm:"type:varchar(255)" json:"customer_email"`
	PlanType             string          `gorm:"type:varchar(20);not null" json:"plan_type"`
	PlanName             string          `gorm:"type:varchar(100);not null" json:"plan_name"`
	Amount               int64           `gorm:"not null" json:"amount"`
	PlotSize             string          `gorm:"type:varchar(50)" json:"plot_size"`
	PlotDimensions       string          `gorm:"type:varchar(50)" json:"plot_dimensions"`
	Facing               string          `gorm:"type:varchar(20)" json:"facing"`
	Floors               int             `gorm:"default:1" json:"floors"`
	Requirements         string          `gorm:"type:text" json:"requirements"`
	Status               Status          `gorm:"type:varchar(30);not null;index" json:"status"`
	AssignedContractorID *string         `gorm:"type:uuid;index" json:"assigned_contractor_id"`
	Updates              []ProjectUpdate `gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT" json:"updates"`
	Deliverables         []Deliverable   `gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT" json:"deliverables"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// BeforeCreate fills the primary key when the caller left it empty.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// LastUpdate returns the newest log entry, or nil for a record without history.
func (p *Project) LastUpdate() *ProjectUpdate {
	if len(p.Updates) == 0 {
		return nil
	}
	return &p.Updates[len(p.Updates)-1]
}

// NextSeq is the sequence number the next appended update must carry.
func (p *Project) NextSeq() int {
	if last := p.LastUpdate(); last != nil {
		return last.Seq + 1
	}
	return 1
}

// ProjectUpdate is one immutable entry of a project's append-only log.
type ProjectUpdate struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  string     `gorm:"type:uuid;not null;uniqueIndex:idx_project_update_seq,priority:1" json:"project_id"`
	Seq        int        `gorm:"not null;uniqueIndex:idx_project_update_seq,priority:2" json:"seq"`
	Kind       UpdateKind `gorm:"type:varchar(20);not null" json:"kind"`
	Status     Status     `gorm:"type:varchar(30);not null" json:"status"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	CreatedBy  ActorRole  `gorm:"type:varchar(20);not null" json:"created_by"`
	AuthorName string     `gorm:"type:varchar(255)" json:"author_name,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (u *ProjectUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Deliverable is a file artifact produced for a project.
type Deliverable struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  string    `gorm:"type:uuid;not null;index" json:"project_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Type       string    `gorm:"type:varchar(20);not null" json:"type"` // pdf, dwg, image, document
	URL        string    `gorm:"type:text;not null" json:"url"`
	Size       string    `gorm:"type:varchar(20)" json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy ActorRole `gorm:"type:varchar(20);not null" json:"uploaded_by"`
}

func (d *Deliverable) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// ProjectPatch carries a partial update of a project's descriptive fields.
// nil means "leave unchanged". Lifecycle fields are not patchable.
type ProjectPatch struct {
	CustomerName   *string `json:"customer_name"`
	CustomerPhone  *string `json:"customer_phone"`
	CustomerEmail  *string `json:"customer_email"`
	PlotSize       *string `json:"plot_size"`
	PlotDimensions *string `json:"plot_dimensions"`
	Facing         *string `json:"facing"`
	Floors         *int    `json:"floors"`
	Requirements   *string `json:"requirements"`
}

// Apply merges the non-nil fields into p.
func (pp ProjectPatch) Apply(p *Project) {
	if pp.CustomerName != nil {
		p.CustomerName = *pp.CustomerName
	}
	if pp.CustomerPhone != nil {
		p.CustomerPhone = *pp.CustomerPhone
	}
	if pp.CustomerEmail != nil {
		p.CustomerEmail = *pp.CustomerEmail
	}
	if pp.PlotSize != nil {
		p.PlotSize = *pp.PlotSize
	}
	if pp.PlotDimensions != nil {
		p.PlotDimensions = *pp.PlotDimensions
	}
	if pp.Facing != nil {
		p.Facing = *pp.Facing
	}
	if pp.Floors != nil {
		p.Floors = *pp.Floors
	}
	if pp.Requirements != nil {
		p.Requirements = *pp.Requirements
	}
}

// Clone returns a deep copy so callers never share slices with a store.
func (p Project) Clone() Project {
	c := p
	if p.AssignedContractorID != nil {
		id := *p.AssignedContractorID
		c.AssignedContractorID = &id
	}
	c.Updates = append([]ProjectUpdate(nil), p.Updates...)
	c.Deliverables = append([]Deliverable(nil), p.Deliverables...)
	return c
}
