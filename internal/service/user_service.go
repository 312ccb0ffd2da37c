package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"storepos/internal/model"
	"storepos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is how long an API token stays valid.
const TokenTTL = 24 * time.Hour

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token        string             `json:"token"`
	Role         model.Role         `json:"role"`
	Capabilities []model.Capability `json:"capabilities"`
	ExpiresAt    time.Time          `json:"expires_at"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	Active    bool       `json:"active"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

// UserService is the authentication gate and staff account administration.
type UserService interface {
	EnsureOwner(ctx context.Context, username, password string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	CreateUser(ctx context.Context, actor *uuid.UUID, req CreateUserRequest) (*UserResponse, error)
	DisableUser(ctx context.Context, actor *uuid.UUID, id uuid.UUID) error
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
}

type userService struct {
	repo      repository.UserRepository
	auditRepo repository.AuditRepository
	secret    []byte
	now       func() time.Time
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, auditRepo repository.AuditRepository, secret []byte) UserService {
	return &userService{repo: repo, auditRepo: auditRepo, secret: secret, now: time.Now}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

// EnsureOwner creates the first owner account when no user exists yet.
func (s *userService) EnsureOwner(ctx context.Context, username, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.create(ctx, nil, CreateUserRequest{Username: username, Password: password, Role: string(model.RoleOwner)}); err != nil {
		return false, err
	}
	log.Printf("Bootstrapped owner account %q", username)
	return true, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	expires := s.now().Add(TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  expires.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		Token:        signed,
		Role:         user.Role,
		Capabilities: user.Role.Capabilities(),
		ExpiresAt:    expires,
	}, nil
}

func (s *userService) CreateUser(ctx context.Context, actor *uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	return s.create(ctx, actor, req)
}

func (s *userService) create(ctx context.Context, actor *uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || utf8.RuneCountInString(username) > 50 {
		return nil, fmt.Errorf("%w: username must be 1 to 50 characters", ErrInvalidInput)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	// Hash password automatically
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	audit := newAudit(actor, model.ActionCreateUser, user.ID.String(), user.Username, map[string]string{"role": string(role)})
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		log.Printf("Failed to audit user creation: %v", err)
	}
	return mapToResponse(user), nil
}

func (s *userService) DisableUser(ctx context.Context, actor *uuid.UUID, id uuid.UUID) error {
	if actor != nil && *actor == id {
		return fmt.Errorf("%w: you cannot disable your own account", ErrInvalidInput)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	audit := newAudit(actor, model.ActionDisableUser, id.String(), user.Username, map[string]bool{"active": false})
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		log.Printf("Failed to audit user disable: %v", err)
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *mapToResponse(&users[i]))
	}
	return res, total, nil
}
