package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"gorm.io/datatypes"
)

type CreateLeadRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Phone    string                 `json:"phone" binding:"required"`
	Email    string                 `json:"email"`
	Message  string                 `json:"message"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata"`
}

type LeadResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Phone     string                 `json:"phone"`
	Email     string                 `json:"email"`
	Message   string                 `json:"message"`
	Source    string                 `json:"source"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type LeadService interface {
	Create(ctx context.Context, req CreateLeadRequest) (*LeadResponse, error)
	List(ctx context.Context, source string, page, limit int) ([]LeadResponse, int64, error)
}

type leadService struct {
	repo repository.LeadRepository
}

func NewLeadService(repo repository.LeadRepository) LeadService {
	return &leadService{repo: repo}
}

var validLeadSources = map[string]bool{
	model.LeadSourceContactForm: true,
	model.LeadSourceChatWidget:  true,
	model.LeadSourceCallback:    true,
}

const maxLeadMessage = 2000

func toLeadResponse(l *model.Lead) LeadResponse {
	return LeadResponse{
		ID:        l.ID,
		Name:      l.Name,
		Phone:     l.Phone,
		Email:     l.Email,
		Message:   l.Message,
		Source:    l.Source,
		Metadata:  l.Metadata,
		CreatedAt: l.CreatedAt,
	}
}

func (s *leadService) Create(ctx context.Context, req CreateLeadRequest) (*LeadResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = model.LeadSourceContactForm
	}
	if !validLeadSources[source] {
		return nil, validationError("source must be one of: contact_form, chat_widget, callback")
	}
	message := strings.TrimSpace(req.Message)
	if len(message) > maxLeadMessage {
		return nil, validationError("message is limited to %d characters", maxLeadMessage)
	}

	lead := &model.Lead{
		Name:    name,
		Phone:   phone,
		Email:   email,
		Message: message,
		Source:  source,
	}
	if len(req.Metadata) > 0 {
		lead.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}
	res := toLeadResponse(lead)
	return &res, nil
}

func (s *leadService) List(ctx context.Context, source string, page, limit int) ([]LeadResponse, int64, error) {
	if source != "" && !validLeadSources[source] {
		return nil, 0, validationError("unknown lead source %q", source)
	}
	leads, total, err := s.repo.List(ctx, source, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	res := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		res = append(res, toLeadResponse(&leads[i]))
	}
	return res, total, nil
}
