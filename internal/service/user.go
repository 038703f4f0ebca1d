package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// UserService implements the business logic for user profile operations.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// CreateUserInput holds the parameters for creating a user profile.
type CreateUserInput struct {
	Name           string
	Role           string
	Location       string
	FarmName       *string
	Certifications *string
	Preferences    *string
}

// CreateUser creates a new user profile. Producers carry farm details,
// buyers carry preferences; both are free-form and optional.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !domain.IsValidRole(input.Role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("role must be %q or %q", domain.RoleBuyer, domain.RoleProducer))
	}

	user := &domain.User{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Role:           input.Role,
		Location:       input.Location,
		FarmName:       input.FarmName,
		Certifications: input.Certifications,
		Preferences:    input.Preferences,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, nil
}

// GetUser retrieves a user profile by its ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// ListUsers returns a paginated list of user profiles.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
