package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/repository"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

// UserService implements the business logic for user account operations.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// CreateUserInput holds the parameters for creating a user.
type CreateUserInput struct {
	Email       string
	Username    string
	FirstName   string
	LastName    string
	Phone       string
	Address     string
	DateOfBirth *time.Time
}

// UpdateUserInput holds the parameters for updating a user.
type UpdateUserInput struct {
	Email       *string
	Username    *string
	FirstName   *string
	LastName    *string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
}

// CreateUser registers a new customer account.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if input.Username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:          uuid.New().String(),
		Email:       input.Email,
		Username:    input.Username,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Role:        domain.RoleCustomer,
		Phone:       input.Phone,
		Address:     input.Address,
		DateOfBirth: input.DateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID))

	return user, nil
}

// GetUser retrieves a user. Non-admin actors may only read their own account.
func (s *UserService) GetUser(ctx context.Context, actor Actor, id string) (*domain.User, error) {
	if !actor.CanAccess(id) {
		return nil, apperrors.Forbidden("account belongs to another user")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// ListUsers returns all users. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor Actor, p pagination.Params) ([]domain.User, int, error) {
	if !actor.Admin {
		return nil, 0, apperrors.Forbidden("only admins may list users")
	}

	users, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

// UpdateUser applies the given changes to a user account.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id string, input *UpdateUserInput) (*domain.User, error) {
	if !actor.CanAccess(id) {
		return nil, apperrors.Forbidden("account belongs to another user")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	if input.Email != nil {
		if *input.Email == "" {
			return nil, apperrors.InvalidInput("email must not be empty")
		}
		user.Email = *input.Email
	}
	if input.Username != nil {
		if *input.Username == "" {
			return nil, apperrors.InvalidInput("username must not be empty")
		}
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user account.
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, id string) error {
	if !actor.CanAccess(id) {
		return apperrors.Forbidden("account belongs to another user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id))

	return nil
}
