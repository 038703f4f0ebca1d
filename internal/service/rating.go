package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/event"
	"github.com/akanakis/AgroMarket/internal/repository"
)

// Trigger constants for product.rating_updated events.
const (
	TriggerOrder  = "order"
	TriggerReview = "review"
)

// RatingService maintains the per-product rating aggregates. It exposes the
// two update policies the marketplace runs side by side:
//
//   - ApplyOrderRating folds one order rating into the stored aggregate
//     without reading the review table.
//   - RecomputeFromReviews rederives the aggregate from the full review set,
//     erasing whatever order ratings contributed before.
//
// The two policies do not commute. Applying an order rating and then posting
// a review yields a different aggregate than the reverse order, and that is
// accepted behavior: the stored aggregate reflects the history of updates,
// not a single closed-form formula.
type RatingService struct {
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *RatingService {
	return &RatingService{
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// ApplyOrderRating applies one incremental update to the product's aggregate.
// The repository runs the update in its own transaction with the product row
// locked, so concurrent updates serialize per product.
func (s *RatingService) ApplyOrderRating(ctx context.Context, productID string, rating int) (*domain.RatingAggregate, error) {
	agg, err := s.products.ApplyOrderRating(ctx, productID, rating)
	if err != nil {
		return nil, fmt.Errorf("apply order rating: %w", err)
	}

	if err := s.producer.PublishProductRatingUpdated(ctx, productID, *agg, TriggerOrder); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.rating_updated event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product aggregate updated from order rating",
		slog.String("product_id", productID),
		slog.Int("rating", rating),
		slog.Float64("new_rating", agg.Rating),
		slog.Int("new_review_count", agg.ReviewCount),
	)

	return agg, nil
}

// RecomputeFromReviews replaces the product's aggregate with the mean of its
// stored reviews. A product with no reviews resets to a zero aggregate.
func (s *RatingService) RecomputeFromReviews(ctx context.Context, productID string) (*domain.RatingAggregate, error) {
	agg, err := s.products.RecomputeRatingFromReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("recompute rating from reviews: %w", err)
	}

	if err := s.producer.PublishProductRatingUpdated(ctx, productID, *agg, TriggerReview); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.rating_updated event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product aggregate recomputed from reviews",
		slog.String("product_id", productID),
		slog.Float64("new_rating", agg.Rating),
		slog.Int("new_review_count", agg.ReviewCount),
	)

	return agg, nil
}
