package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeadSource enum constants
const (
	LeadSourceContactForm = "contact_form"
	LeadSourceChatWidget  = "chat_widget"
	LeadSourceCallback    = "callback"
)

// Lead is a free-form enquiry captured from the site.
type Lead struct {
	ID        string            `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string            `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string            `gorm:"type:varchar(20);not null" json:"phone"`
	Email     string            `gorm:"type:varchar(255)" json:"email"`
	Message   string            `gorm:"type:text" json:"message"`
	Source    string            `gorm:"type:varchar(30);not null;index" json:"source"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
