package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	"github.com/akanakis/AgroMarket/pkg/database"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user profile.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, name, role, location, farm_name, certifications, preferences, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Role,
		u.Location,
		u.FarmName,
		u.Certifications,
		u.Preferences,
		u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, role, location, farm_name, certifications, preferences, created_at
		FROM users
		WHERE id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Role,
		&u.Location,
		&u.FarmName,
		&u.Certifications,
		&u.Preferences,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// List returns users with the total count.
func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	query := `
		SELECT id, name, role, location, farm_name, certifications, preferences, created_at,
		       count(*) OVER() AS total_count
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var totalCount int
	users := make([]domain.User, 0)

	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Role,
			&u.Location,
			&u.FarmName,
			&u.Certifications,
			&u.Preferences,
			&u.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, totalCount, nil
}
