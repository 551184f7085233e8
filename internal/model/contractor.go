package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractorStatus enum constants
const (
	ContractorPending  = "pending"
	ContractorApproved = "approved"
	ContractorRejected = "rejected"
)

// Contractor is a service-provider partner who can be assigned to projects once approved.
type Contractor struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Company      string    `gorm:"type:varchar(255)" json:"company"`
	Phone        string    `gorm:"type:varchar(20);not null;index" json:"phone"`
	Email        string    `gorm:"type:varchar(255)" json:"email"`
	District     string    `gorm:"type:varchar(100)" json:"district"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReferralCode string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"referral_code"`
	ProjectCount int       `gorm:"-" json:"project_count"` // derived from assignments
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Contractor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DisplayName renders "Name (Company)" or just the name.
func (c *Contractor) DisplayName() string {
	if c.Company == "" {
		return c.Name
	}
	return c.Name + " (" + c.Company + ")"
}

// ContractorPatch is a partial update; nil fields stay unchanged.
type ContractorPatch struct {
	Name     *string `json:"name"`
	Company  *string `json:"company"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	District *string `json:"district"`
	Status   *string `json:"status"`
}

func (cp ContractorPatch) Apply(c *Contractor) {
	if cp.Name != nil {
		c.Name = *cp.Name
	}
	if cp.Company != nil {
		c.Company = *cp.Company
	}
	if cp.Phone != nil {
		c.Phone = *cp.Phone
	}
	if cp.Email != nil {
		c.Email = *cp.Email
	}
	if cp.District != nil {
		c.District = *cp.District
	}
	if cp.Status != nil {
		c.Status = *cp.Status
	}
}
