package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	"github.com/akanakis/AgroMarket/pkg/database"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, description, price, unit, category, location,
	seller_id, seller_name, image_url, organic, harvest_date, expiration_date,
	max_quantity, rating, review_count, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Unit,
		&p.Category,
		&p.Location,
		&p.SellerID,
		&p.SellerName,
		&p.ImageURL,
		&p.Organic,
		&p.HarvestDate,
		&p.ExpirationDate,
		&p.MaxQuantity,
		&p.Rating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product listing.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, unit, category, location,
			seller_id, seller_name, image_url, organic, harvest_date, expiration_date,
			max_quantity, rating, review_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Unit,
		p.Category,
		p.Location,
		p.SellerID,
		p.SellerName,
		p.ImageURL,
		p.Organic,
		p.HarvestDate,
		p.ExpirationDate,
		p.MaxQuantity,
		p.Rating,
		p.ReviewCount,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return p, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	if filter.OrganicOnly {
		conditions = append(conditions, "organic = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
	products := make([]domain.Product, 0)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Unit,
			&p.Category,
			&p.Location,
			&p.SellerID,
			&p.SellerName,
			&p.ImageURL,
			&p.Organic,
			&p.HarvestDate,
			&p.ExpirationDate,
			&p.MaxQuantity,
			&p.Rating,
			&p.ReviewCount,
			&p.CreatedAt,
			&p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update persists the descriptive fields of a product. Aggregate fields are
// owned by the rating paths and are deliberately not written here.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, unit = $4, category = $5,
		    location = $6, image_url = $7, organic = $8, harvest_date = $9,
		    expiration_date = $10, max_quantity = $11, updated_at = $12
		WHERE id = $13`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Price,
		p.Unit,
		p.Category,
		p.Location,
		p.ImageURL,
		p.Organic,
		p.HarvestDate,
		p.ExpirationDate,
		p.MaxQuantity,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product. Its reviews go with it via ON DELETE CASCADE.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// ApplyOrderRating folds one order rating into the stored aggregate. The
// product row is locked for the duration of the read-modify-write, so
// concurrent incremental updates serialize instead of losing counts. The
// review table is not consulted: the stored aggregate is trusted as-is.
func (r *ProductRepository) ApplyOrderRating(ctx context.Context, productID string, rating int) (*domain.RatingAggregate, error) {
	ctx, end := database.TraceQuery(ctx, "ApplyOrderRating", "SELECT ... FOR UPDATE; UPDATE products")
	agg, err := r.applyOrderRating(ctx, productID, rating)
	end(err)
	return agg, err
}

func (r *ProductRepository) applyOrderRating(ctx context.Context, productID string, rating int) (*domain.RatingAggregate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var agg domain.RatingAggregate
	err = tx.QueryRow(ctx,
		`SELECT rating, review_count FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&agg.Rating, &agg.ReviewCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("lock product aggregate: %w", err)
	}

	agg = agg.ApplyIncremental(rating)

	_, err = tx.Exec(ctx,
		`UPDATE products SET rating = $1, review_count = $2, updated_at = $3 WHERE id = $4`,
		agg.Rating, agg.ReviewCount, time.Now().UTC(), productID,
	)
	if err != nil {
		return nil, fmt.Errorf("update product aggregate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &agg, nil
}

// RecomputeRatingFromReviews rederives the aggregate from the review table
// alone, under the same per-product row lock. Order-rating contributions
// folded in by ApplyOrderRating are overwritten; the two paths share the
// aggregate fields but not a source of truth.
func (r *ProductRepository) RecomputeRatingFromReviews(ctx context.Context, productID string) (*domain.RatingAggregate, error) {
	ctx, end := database.TraceQuery(ctx, "RecomputeRatingFromReviews", "SELECT ... FOR UPDATE; SELECT rating FROM reviews; UPDATE products")
	agg, err := r.recomputeRatingFromReviews(ctx, productID)
	end(err)
	return agg, err
}

func (r *ProductRepository) recomputeRatingFromReviews(ctx context.Context, productID string) (*domain.RatingAggregate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists string
	err = tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("lock product aggregate: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT rating FROM reviews WHERE product_id = $1 ORDER BY created_at`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("query review ratings: %w", err)
	}

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan review rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review ratings: %w", err)
	}

	agg := domain.RecomputeFromRatings(ratings)

	_, err = tx.Exec(ctx,
		`UPDATE products SET rating = $1, review_count = $2, updated_at = $3 WHERE id = $4`,
		agg.Rating, agg.ReviewCount, time.Now().UTC(), productID,
	)
	if err != nil {
		return nil, fmt.Errorf("update product aggregate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &agg, nil
}
