package postgres

import (
	"context"
	"fmt"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new product review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, author, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.Author,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByProductID returns all reviews for a product in creation order.
// An unknown product yields an empty slice, not an error.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `
		SELECT id, product_id, author, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.Author,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
