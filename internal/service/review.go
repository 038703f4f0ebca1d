package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/event"
	"github.com/akanakis/AgroMarket/internal/repository"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ProductID string
	Author    string
	Rating    int
	Comment   string
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo     repository.ReviewRepository
	products repository.ProductRepository
	ratings  *RatingService
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, products repository.ProductRepository, ratings *RatingService, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		products: products,
		ratings:  ratings,
		producer: producer,
		logger:   logger,
	}
}

// CreateReview stores a review for an existing product and then replaces the
// product's aggregate with the mean over all stored reviews. The recompute
// reads only the review table, so any order-rating contributions folded into
// the aggregate before this point are erased.
//
// Unlike order lines, reviews do check product existence up front: a review
// against an unknown product is rejected with NOT_FOUND before any write.
func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("check product for review: %w", err)
	}

	author := input.Author
	if author == "" {
		author = "Anonymous"
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Author:    author,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if _, err := s.ratings.RecomputeFromReviews(ctx, input.ProductID); err != nil {
		// The review itself is already stored; the aggregate catches up on
		// the next recompute for this product.
		s.logger.ErrorContext(ctx, "aggregate recompute after review failed",
			slog.String("review_id", review.ID),
			slog.String("product_id", input.ProductID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns all reviews for a product in creation order. An unknown
// product yields an empty list, matching the read-path behavior of the store.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}

	reviews, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}
