package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func TestCreateUser_Producer(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	svc := NewUserService(users, slog.Default())

	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	farm := "Papadopoulos Estate"
	user, err := svc.CreateUser(ctx, CreateUserInput{
		Name:     "Giorgos Papadopoulos",
		Role:     domain.RoleProducer,
		Location: "Kalamata, Messinia",
		FarmName: &farm,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleProducer, user.Role)
	require.NotNil(t, user.FarmName)
	assert.Equal(t, "Papadopoulos Estate", *user.FarmName)
}

func TestCreateUser_InvalidRole_Rejected(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	svc := NewUserService(users, slog.Default())

	_, err := svc.CreateUser(ctx, CreateUserInput{Name: "Someone", Role: "ADMIN"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_MissingName_Rejected(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	svc := NewUserService(users, slog.Default())

	_, err := svc.CreateUser(ctx, CreateUserInput{Role: domain.RoleBuyer})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	svc := NewUserService(users, slog.Default())

	users.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("user", "missing"))

	user, err := svc.GetUser(ctx, "missing")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListUsers_NormalizesPagination(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepository)
	svc := NewUserService(users, slog.Default())

	users.On("List", ctx, repository.UserFilter{Page: 1, PerPage: 20}).
		Return([]domain.User{}, 0, nil)

	_, _, err := svc.ListUsers(ctx, repository.UserFilter{})
	require.NoError(t, err)
	users.AssertExpectations(t)
}
