package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
	"github.com/akanakis/AgroMarket/pkg/database"
)

func newUserTestRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

func TestUserRepository_Create_Producer(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	farm := "Papadopoulos Estate"
	certs := `["Organic Certified", "PDO"]`
	u := &domain.User{
		ID:             "user-001",
		Name:           "Papadopoulos Estate",
		Role:           domain.RoleProducer,
		Location:       "Kalamata, Messinia",
		FarmName:       &farm,
		Certifications: &certs,
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Role, u.Location, u.FarmName, u.Certifications, u.Preferences, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_Success(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	now := time.Now().UTC()
	prefs := `["Vegetables", "Fruits", "Dairy"]`
	mock.ExpectQuery("FROM users").
		WithArgs("user-003").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "role", "location", "farm_name", "certifications", "preferences", "created_at",
		}).AddRow("user-003", "Guest Buyer", domain.RoleBuyer, "Athens, Attica", nil, nil, &prefs, now))

	u, err := repo.GetByID(context.Background(), "user-003")
	require.NoError(t, err)
	assert.Equal(t, "Guest Buyer", u.Name)
	assert.Equal(t, domain.RoleBuyer, u.Role)
	assert.Nil(t, u.FarmName)
	require.NotNil(t, u.Preferences)
	assert.Equal(t, prefs, *u.Preferences)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	mock.ExpectQuery("FROM users").
		WithArgs("user-999").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "role", "location", "farm_name", "certifications", "preferences", "created_at",
		}))

	u, err := repo.GetByID(context.Background(), "user-999")
	assert.Nil(t, u)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_WithTotalCount(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery("FROM users").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "role", "location", "farm_name", "certifications", "preferences", "created_at", "total_count",
		}).
			AddRow("user-002", "Meteora Dairy", domain.RoleProducer, "Elassona, Thessaly", nil, nil, nil, now, 3).
			AddRow("user-001", "Papadopoulos Estate", domain.RoleProducer, "Kalamata, Messinia", nil, nil, nil, now.Add(-time.Hour), 3))

	users, total, err := repo.List(context.Background(), repository.UserFilter{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 2)
	assert.Equal(t, "user-002", users[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_SecondPageOffset(t *testing.T) {
	repo, mock := newUserTestRepo(t)

	mock.ExpectQuery("FROM users").
		WithArgs(10, 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "role", "location", "farm_name", "certifications", "preferences", "created_at", "total_count",
		}))

	users, total, err := repo.List(context.Background(), repository.UserFilter{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)

	assert.NoError(t, mock.ExpectationsWereMet())
}
