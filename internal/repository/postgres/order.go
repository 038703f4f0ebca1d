package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	"github.com/akanakis/AgroMarket/pkg/database"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order header and all its line items inside a single
// transaction. A failure anywhere rolls back the whole order; a concurrent
// reader sees either the complete order or nothing. Line product IDs are not
// existence-checked here.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, customer_id, customer_name, total, status, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.CustomerID,
		o.CustomerName,
		o.Total,
		o.Status,
		o.Rating,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, customer_name, total, status, rating, created_at
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.CustomerID,
		&o.CustomerName,
		&o.Total,
		&o.Status,
		&o.Rating,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, customer_id, customer_name, total, status, rating, created_at,
		       count(*) OVER() AS total_count
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.CustomerName,
			&o.Total,
			&o.Status,
			&o.Rating,
			&o.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, quantity, price
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, 0, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Quantity,
				&item.Price,
			); err != nil {
				return nil, 0, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, 0, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, totalCount, nil
}

// SetRating records the customer's rating on the order header. It is a plain
// one-column write; an already-rated order is overwritten.
func (r *OrderRepository) SetRating(ctx context.Context, id string, rating int) error {
	query := `UPDATE orders SET rating = $1 WHERE id = $2`

	ct, err := r.pool.Exec(ctx, query, rating, id)
	if err != nil {
		return fmt.Errorf("set order rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// loadOrderItems retrieves all items belonging to a given order.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.Price,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}

	return items, nil
}
