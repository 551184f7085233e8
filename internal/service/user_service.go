package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"vastustructural/internal/model"
	"vastustructural/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

const defaultTokenTTL = 24 * time.Hour

// DTOs for Request validation
type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string          `json:"token"`
	Role      model.ActorRole `json:"role"`
	Name      string          `json:"name"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// TokenIssuer signs the bearer tokens read back by middleware.RequireRole and the websocket hub.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(subject string, role model.ActorRole, name string) (*TokenResponse, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"name": name,
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &TokenResponse{Token: signed, Role: role, Name: name, ExpiresAt: expiresAt}, nil
}

// UserService handles back-office admin accounts
type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	// SeedAdmin creates the admin account unless the email is already registered.
	SeedAdmin(ctx context.Context, name, email, password string) (bool, error)
}

type userService struct {
	users  repository.UserRepository
	audit  repository.AuditRepository
	tokens *TokenIssuer
}

func NewUserService(store *repository.Store, tokens *TokenIssuer) UserService {
	return &userService{users: store.Users, audit: store.Audit, tokens: tokens}
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", model.ErrUnauthorized)

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}
	if user.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: account has no portal access", model.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID, user.Role, user.Name)
	if err != nil {
		return nil, err
	}
	actor := Actor{Role: user.Role, ID: user.ID, Name: user.Name}
	if err := writeAudit(ctx, s.audit, actor, model.ActionLogin, user.ID, user.Email, nil); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *userService) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return false, validationError("invalid admin email %q", email)
	}
	if len(password) < 8 {
		return false, validationError("admin password must be at least 8 characters")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !isNotFound(err) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	if name == "" {
		name = "Administrator"
	}
	user := &model.User{Name: name, Email: email, Password: string(hashed), Role: model.RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

// writeAudit records an administrative action; inside RunInTx it joins the caller's transaction.
func writeAudit(ctx context.Context, repo repository.AuditRepository, actor Actor, action, entityID, entityName string, details map[string]interface{}) error {
	entry := &model.AuditLog{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		entry.Details = datatypes.JSON(raw)
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
