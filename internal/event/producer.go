package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akanakis/AgroMarket/internal/domain"
	pkgkafka "github.com/akanakis/AgroMarket/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicOrderCreated         = "agromarket.order.created"
	TopicOrderRated           = "agromarket.order.rated"
	TopicReviewCreated        = "agromarket.review.created"
	TopicProductRatingUpdated = "agromarket.product.rating_updated"
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeReview  = "review"
	AggregateTypeProduct = "product"
)

// Source identifier for events originating from this service.
const SourceAPI = "agromarket-api"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID           string          `json:"id"`
	CustomerID   *string         `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	Total        float64         `json:"total"`
	Status       string          `json:"status"`
	Items        []OrderItemData `json:"items"`
}

// OrderItemData is the event payload for an order line item.
type OrderItemData struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderRatedData is the payload for an order.rated event.
type OrderRatedData struct {
	OrderID         string   `json:"order_id"`
	Rating          int      `json:"rating"`
	UpdatedProducts []string `json:"updated_products"`
	FailedProducts  []string `json:"failed_products,omitempty"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID  string `json:"review_id"`
	ProductID string `json:"product_id"`
	Author    string `json:"author"`
	Rating    int    `json:"rating"`
}

// ProductRatingUpdatedData is the payload for a product.rating_updated event.
// Trigger is "order" for incremental updates and "review" for full recomputes.
type ProductRatingUpdatedData struct {
	ProductID   string  `json:"product_id"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Trigger     string  `json:"trigger"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	data := OrderCreatedData{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
		Total:        order.Total,
		Status:       order.Status,
		Items:        items,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.Float64("total", order.Total),
	)

	return nil
}

// PublishOrderRated publishes an order.rated event, including which product
// aggregates were updated and which failed.
func (p *Producer) PublishOrderRated(ctx context.Context, orderID string, rating int, updated, failed []string) error {
	data := OrderRatedData{
		OrderID:         orderID,
		Rating:          rating,
		UpdatedProducts: updated,
		FailedProducts:  failed,
	}

	event, err := pkgkafka.NewEvent(TopicOrderRated, orderID, AggregateTypeOrder, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create order.rated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderRated, event); err != nil {
		return fmt.Errorf("publish order.rated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.rated event",
		slog.String("order_id", orderID),
		slog.Int("rating", rating),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		Author:    review.Author,
		Rating:    review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}

// PublishProductRatingUpdated publishes a product.rating_updated event.
func (p *Producer) PublishProductRatingUpdated(ctx context.Context, productID string, agg domain.RatingAggregate, trigger string) error {
	data := ProductRatingUpdatedData{
		ProductID:   productID,
		Rating:      agg.Rating,
		ReviewCount: agg.ReviewCount,
		Trigger:     trigger,
	}

	event, err := pkgkafka.NewEvent(TopicProductRatingUpdated, productID, AggregateTypeProduct, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create product.rating_updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductRatingUpdated, event); err != nil {
		return fmt.Errorf("publish product.rating_updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.rating_updated event",
		slog.String("product_id", productID),
		slog.Float64("rating", agg.Rating),
		slog.Int("review_count", agg.ReviewCount),
	)

	return nil
}
