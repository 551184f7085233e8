package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"
)

// --- Contractor DTOs ---

type RegisterContractorRequest struct {
	Name     string `json:"name" binding:"required"`
	Company  string `json:"company"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	District string `json:"district"`
}

type UpdateContractorRequest struct {
	Name     *string `json:"name"`
	Company  *string `json:"company"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	District *string `json:"district"`
}

type RejectContractorRequest struct {
	Reason string `json:"reason"`
}

type ContractorLoginRequest struct {
	Phone        string `json:"phone" binding:"required"`
	ReferralCode string `json:"referral_code" binding:"required"`
}

type ContractorResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Company      string    `json:"company"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	District     string    `json:"district"`
	Status       string    `json:"status"`
	ReferralCode string    `json:"referral_code"`
	ProjectCount int       `json:"project_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// --- Interface ---

type ContractorService interface {
	Register(ctx context.Context, req RegisterContractorRequest) (*ContractorResponse, error)
	List(ctx context.Context, status, search string, page, limit int) ([]ContractorResponse, int64, error)
	Get(ctx context.Context, id string) (*ContractorResponse, error)
	Update(ctx context.Context, id string, req UpdateContractorRequest) (*ContractorResponse, error)
	Approve(ctx context.Context, id string, actor Actor) (*ContractorResponse, error)
	Reject(ctx context.Context, id, reason string, actor Actor) (*ContractorResponse, error)
	Login(ctx context.Context, req ContractorLoginRequest) (*TokenResponse, error)
}

// --- Implementation ---

type contractorService struct {
	store  *repository.Store
	tokens *TokenIssuer
}

func NewContractorService(store *repository.Store, tokens *TokenIssuer) ContractorService {
	return &contractorService{store: store, tokens: tokens}
}

const referralAttempts = 5

var validContractorStatuses = map[string]bool{
	model.ContractorPending:  true,
	model.ContractorApproved: true,
	model.ContractorRejected: true,
}

// normalizePhone keeps digits only and drops an Indian country code.
func normalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) != 10 {
		return "", validationError("phone must have 10 digits")
	}
	return digits, nil
}

// referralPrefix takes up to four letters of the name, padded so every code has the same shape.
func referralPrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 4 {
				break
			}
		}
	}
	prefix := b.String()
	for len(prefix) < 4 {
		prefix += "V"
	}
	return prefix
}

func newReferralCode(name string) (string, error) {
	suffix, err := randomString(orderIDAlphabet, 4)
	if err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	return referralPrefix(name) + suffix, nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return validationError("invalid email format")
	}
	return nil
}

func toContractorResponse(c *model.Contractor) ContractorResponse {
	return ContractorResponse{
		ID:           c.ID,
		Name:         c.Name,
		Company:      c.Company,
		DisplayName:  c.DisplayName(),
		Phone:        c.Phone,
		Email:        c.Email,
		District:     c.District,
		Status:       c.Status,
		ReferralCode: c.ReferralCode,
		ProjectCount: c.ProjectCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (s *contractorService) withProjectCount(ctx context.Context, c *model.Contractor) (*ContractorResponse, error) {
	count, err := s.store.Projects.CountByContractor(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	c.ProjectCount = int(count)
	res := toContractorResponse(c)
	return &res, nil
}

func (s *contractorService) Register(ctx context.Context, req RegisterContractorRequest) (*ContractorResponse, error) {
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

	var contractor *model.Contractor
	for attempt := 0; attempt < referralAttempts; attempt++ {
		code, err := newReferralCode(name)
		if err != nil {
			return nil, err
		}
		contractor = &model.Contractor{
			Name:         name,
			Company:      strings.TrimSpace(req.Company),
			Phone:        phone,
			Email:        email,
			District:     strings.TrimSpace(req.District),
			Status:       model.ContractorPending,
			ReferralCode: code,
		}
		err = s.store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.store.Contractors.Create(txCtx, contractor); err != nil {
				return err
			}
			return writeAudit(txCtx, s.store.Audit, SystemActor, model.ActionRegisterContractor,
				contractor.ID, contractor.DisplayName(), map[string]interface{}{
					"phone":    contractor.Phone,
					"district": contractor.District,
				})
		})
		if err == nil {
			res := toContractorResponse(contractor)
			return &res, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("failed to register contractor: %w", err)
		}
	}
	return nil, fmt.Errorf("could not allocate a unique referral code: %w", model.ErrConflict)
}

func (s *contractorService) List(ctx context.Context, status, search string, page, limit int) ([]ContractorResponse, int64, error) {
	if status != "" && !validContractorStatuses[status] {
		return nil, 0, validationError("status must be one of: pending, approved, rejected")
	}
	contractors, total, err := s.store.Contractors.List(ctx, repository.ContractorFilter{
		Status: status,
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contractors: %w", err)
	}

	res := make([]ContractorResponse, 0, len(contractors))
	for i := range contractors {
		c, err := s.withProjectCount(ctx, &contractors[i])
		if err != nil {
			return nil, 0, err
		}
		res = append(res, *c)
	}
	return res, total, nil
}

func (s *contractorService) Get(ctx context.Context, id string) (*ContractorResponse, error) {
	contractor, err := s.store.Contractors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withProjectCount(ctx, contractor)
}

func (s *contractorService) Update(ctx context.Context, id string, req UpdateContractorRequest) (*ContractorResponse, error) {
	patch := model.ContractorPatch{
		Company:  req.Company,
		Email:    req.Email,
		District: req.District,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		patch.Name = &name
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		patch.Phone = &phone
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return nil, err
		}
	}

	contractor, err := s.store.Contractors.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return s.withProjectCount(ctx, contractor)
}

func (s *contractorService) Approve(ctx context.Context, id string, actor Actor) (*ContractorResponse, error) {
	return s.decide(ctx, id, model.ContractorApproved, model.ActionApproveContractor, "", actor)
}

func (s *contractorService) Reject(ctx context.Context, id, reason string, actor Actor) (*ContractorResponse, error) {
	return s.decide(ctx, id, model.ContractorRejected, model.ActionRejectContractor, strings.TrimSpace(reason), actor)
}

// decide moves a pending application to its final status and audits it in the same transaction.
func (s *contractorService) decide(ctx context.Context, id, status, action, reason string, actor Actor) (*ContractorResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins review contractor applications", model.ErrForbiddenTransition)
	}

	var updated *model.Contractor
	err := s.store.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		contractor, err := s.store.Contractors.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if contractor.Status != model.ContractorPending {
			return validationError("contractor %s is already %s", contractor.Name, contractor.Status)
		}

		updated, err = s.store.Contractors.Update(txCtx, id, model.ContractorPatch{Status: &status})
		if err != nil {
			return fmt.Errorf("failed to update contractor: %w", err)
		}

		details := map[string]interface{}{"from": model.ContractorPending, "to": status}
		if reason != "" {
			details["reason"] = reason
		}
		return writeAudit(txCtx, s.store.Audit, actor, action, updated.ID, updated.DisplayName(), details)
	})
	if err != nil {
		return nil, err
	}
	return s.withProjectCount(ctx, updated)
}

func (s *contractorService) Login(ctx context.Context, req ContractorLoginRequest) (*TokenResponse, error) {
	invalid := fmt.Errorf("%w: invalid phone or referral code", model.ErrUnauthorized)

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, invalid
	}
	contractor, err := s.store.Contractors.GetByReferralCode(ctx, strings.TrimSpace(req.ReferralCode))
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if contractor.Phone != phone {
		return nil, invalid
	}
	if contractor.Status != model.ContractorApproved {
		return nil, fmt.Errorf("%w: partner application is %s", model.ErrUnauthorized, contractor.Status)
	}
	return s.tokens.Issue(contractor.ID, model.RoleContractor, contractor.Name)
}
