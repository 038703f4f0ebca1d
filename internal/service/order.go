package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/event"
	"github.com/akanakis/AgroMarket/internal/repository"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// OrderService implements the business logic for order operations.
type OrderService struct {
	repo     repository.OrderRepository
	ratings  *RatingService
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, ratings *RatingService, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		ratings:  ratings,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrderItemInput holds the parameters for an order line item.
type CreateOrderItemInput struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	CustomerID   *string
	CustomerName string
	Total        float64
	Status       string
	Items        []CreateOrderItemInput
}

// CreateOrder creates a new order with its line items in one transaction.
// An order with no items is rejected; either the header and every line land
// together or nothing is written.
//
// The total is recorded as supplied by the caller, not derived from the line
// items; the storefront computes it and the server trusts it. Status defaults
// to Pending when unspecified.
//
// Line product IDs are taken as given and not checked against the catalog.
// A dangling reference surfaces later as a per-item failure when the order
// is rated.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for i, item := range input.Items {
		if item.ProductID == "" {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: product_id is required", i))
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.Price < 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("item %d: price must not be negative", i))
		}
	}
	if input.Total < 0 {
		return nil, apperrors.InvalidInput("total must not be negative")
	}

	status := input.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput("status must be one of: " + strings.Join(domain.ValidStatuses(), ", "))
	}

	customerName := input.CustomerName
	if customerName == "" {
		customerName = "Guest"
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	// Line prices are snapshots supplied by the caller, never re-read from
	// the catalog.
	items := make([]domain.OrderItem, len(input.Items))
	for i, itemInput := range input.Items {
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: itemInput.ProductID,
			Quantity:  itemInput.Quantity,
			Price:     itemInput.Price,
		}
	}

	order := &domain.Order{
		ID:           orderID,
		CustomerID:   input.CustomerID,
		CustomerName: customerName,
		Total:        input.Total,
		Status:       status,
		Items:        items,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("customer_name", order.CustomerName),
		slog.Float64("total", order.Total),
		slog.Int("items", len(order.Items)),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID, including line items.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns a filtered, paginated list of orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// RateOrderResult reports the outcome of rating an order: the updated order
// plus which per-product aggregate updates succeeded and which failed.
type RateOrderResult struct {
	Order           *domain.Order `json:"order"`
	UpdatedProducts []string      `json:"updated_products"`
	FailedProducts  []string      `json:"failed_products,omitempty"`
}

// RateOrder records a satisfaction rating on the order and folds it into the
// aggregate of every product the order contains.
//
// The order rating itself is written first and sticks regardless of what
// happens afterwards. Each line item then gets one incremental aggregate
// update in its own transaction: a product appearing on two lines is counted
// twice, and a failing update (a deleted product, say) is logged and reported
// without touching the other items or the order rating.
//
// Rating an already-rated order overwrites the previous value on the order
// header; the earlier contribution to the product aggregates is not undone.
func (s *OrderService) RateOrder(ctx context.Context, id string, rating int) (*RateOrderResult, error) {
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for rating: %w", err)
	}

	if err := s.repo.SetRating(ctx, id, rating); err != nil {
		return nil, fmt.Errorf("set order rating: %w", err)
	}
	order.Rating = &rating

	updated := make([]string, 0, len(order.Items))
	var failed []string
	for _, item := range order.Items {
		if _, err := s.ratings.ApplyOrderRating(ctx, item.ProductID, rating); err != nil {
			s.logger.WarnContext(ctx, "product aggregate update failed, continuing",
				slog.String("order_id", id),
				slog.String("product_id", item.ProductID),
				slog.String("error", err.Error()),
			)
			failed = append(failed, item.ProductID)
			continue
		}
		updated = append(updated, item.ProductID)
	}

	if err := s.producer.PublishOrderRated(ctx, id, rating, updated, failed); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.rated event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order rated",
		slog.String("order_id", id),
		slog.Int("rating", rating),
		slog.Int("products_updated", len(updated)),
		slog.Int("products_failed", len(failed)),
	)

	return &RateOrderResult{
		Order:           order,
		UpdatedProducts: updated,
		FailedProducts:  failed,
	}, nil
}
