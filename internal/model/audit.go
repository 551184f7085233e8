package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionRegisterContractor = "REGISTER_CONTRACTOR"
	ActionApproveContractor  = "APPROVE_CONTRACTOR"
	ActionRejectContractor   = "REJECT_CONTRACTOR"
	ActionUpdateProject      = "UPDATE_PROJECT"
	ActionPaymentVerified    = "PAYMENT_VERIFIED"
	ActionPaymentFailed      = "PAYMENT_FAILED"
	ActionLogin              = "LOGIN"
)

// AuditLog tracks administrative actions that do not belong to a project's own log
type AuditLog struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string         `gorm:"type:varchar(50);index" json:"actor_id"` // empty for system
	ActorRole  ActorRole      `gorm:"type:varchar(20);not null" json:"actor_role"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
