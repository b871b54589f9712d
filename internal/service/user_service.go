package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"backend/internal/apperr"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserResponse returns a User without exposing the stored password
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserService defines the interface for business logic related to User.
// Mutations take the acting user's id so the self-deletion guard and audit
// trail work from the request session instead of global state.
type UserService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	CreateUser(ctx context.Context, actorID uuid.UUID, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actorID uuid.UUID, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID uuid.UUID, id string) error
}

type userService struct {
	repo      repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

// NewUserService returns a new instance of UserService
func NewUserService(
	repo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) UserService {
	return &userService{repo: repo, auditRepo: auditRepo, txManager: txManager, hub: hub}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

func mapUserToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Surname:   user.Surname,
		Phone:     user.Phone,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func validateUserCreate(req CreateUserRequest) error {
	if !model.Role(req.Role).Valid() {
		return fmt.Errorf("%w: role must be admin, manager or employee", apperr.ErrValidation)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", apperr.ErrValidation)
	}
	if len(req.Password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLen)
	}
	return nil
}

// Login authenticates by case-sensitive email and password equality against
// the stored row. The password comparison is plaintext on purpose: it
// reproduces the behavior of the system this backend replaces, including the
// documented default admin credentials. See the security note in README.md.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if user.Password != req.Password {
		return nil, errors.New("invalid email or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString, User: mapUserToResponse(user)}, nil
}

func (s *userService) CreateUser(ctx context.Context, actorID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	if err := validateUserCreate(req); err != nil {
		return nil, err
	}

	// Unique email check before any write
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", apperr.ErrDuplicateKey)
	}

	user := &model.User{
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
		Phone:    req.Phone,
		Password: req.Password, // stored verbatim, see Login
		Role:     model.Role(req.Role),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: email already exists", apperr.ErrDuplicateKey)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateUser, user, map[string]interface{}{
			"email": user.Email,
			"role":  user.Role,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("user", "created", user.ID.String())
	return mapUserToResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapUserToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserToResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID uuid.UUID, id string, req UpdateUserRequest) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Role != "" {
		if !model.Role(req.Role).Valid() {
			return nil, fmt.Errorf("%w: role must be admin, manager or employee", apperr.ErrValidation)
		}
		user.Role = model.Role(req.Role)
	}

	if req.Email != "" && req.Email != user.Email {
		if !emailRegex.MatchString(req.Email) {
			return nil, fmt.Errorf("%w: invalid email format", apperr.ErrValidation)
		}
		if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("%w: email already exists", apperr.ErrDuplicateKey)
		}
		user.Email = req.Email
	}

	if req.Password != "" {
		if len(req.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLen)
		}
		user.Password = req.Password
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Surname != "" {
		user.Surname = req.Surname
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		// Never log the request itself: it can carry a new password.
		return s.writeAudit(txCtx, actorID, model.ActionUpdateUser, user, map[string]interface{}{
			"email":            user.Email,
			"role":             user.Role,
			"password_changed": req.Password != "",
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("user", "updated", user.ID.String())
	return mapUserToResponse(user), nil
}

// DeleteUser removes a user. Deleting the acting user's own account is
// forbidden regardless of role, so an admin cannot lock everyone out by
// removing themselves.
func (s *userService) DeleteUser(ctx context.Context, actorID uuid.UUID, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}

	if userID == actorID {
		return fmt.Errorf("%w: cannot delete your own account", apperr.ErrForbidden)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", apperr.ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionDeleteUser, user, map[string]interface{}{"deleted": true})
	})
	if err != nil {
		return err
	}

	s.hub.Notify("user", "deleted", id)
	return nil
}

func (s *userService) writeAudit(ctx context.Context, actorID uuid.UUID, action string, user *model.User, payload interface{}) error {
	var uid *uuid.UUID
	if actorID != uuid.Nil {
		uid = &actorID
	}

	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   user.ID.String(),
		EntityName: user.Email,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
