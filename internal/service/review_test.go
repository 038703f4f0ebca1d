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

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByProductID(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

var _ repository.ReviewRepository = (*mockReviewRepository)(nil)

func newTestReviewService(reviews *mockReviewRepository, products *mockProductRepository) *ReviewService {
	logger := slog.Default()
	producer := testEventProducer()
	ratings := NewRatingService(products, producer, logger)
	return NewReviewService(reviews, products, ratings, producer, logger)
}

func TestCreateReview_Success_TriggersRecompute(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	products.On("GetByID", ctx, "prod-001").Return(&domain.Product{ID: "prod-001"}, nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	products.On("RecomputeRatingFromReviews", ctx, "prod-001").
		Return(&domain.RatingAggregate{Rating: 4.0, ReviewCount: 3}, nil)

	review, err := svc.CreateReview(ctx, CreateReviewInput{
		ProductID: "prod-001",
		Author:    "Maria K.",
		Rating:    5,
		Comment:   "Wonderful olive oil",
	})
	require.NoError(t, err)
	require.NotNil(t, review)

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "prod-001", review.ProductID)
	assert.Equal(t, 5, review.Rating)

	reviews.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestCreateReview_ProductMissing_Rejected(t *testing.T) {
	// Reviews check product existence up front, unlike order lines.
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	products.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	review, err := svc.CreateReview(ctx, CreateReviewInput{
		ProductID: "missing",
		Author:    "Nikos P.",
		Rating:    4,
	})
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "RecomputeRatingFromReviews", mock.Anything, mock.Anything)
}

func TestCreateReview_InvalidRating_Rejected(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	for _, rating := range []int{0, 6, -2} {
		review, err := svc.CreateReview(ctx, CreateReviewInput{ProductID: "prod-001", Rating: rating})
		assert.Nil(t, review)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "rating %d should be rejected", rating)
	}

	products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_MissingProductID_Rejected(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	review, err := svc.CreateReview(ctx, CreateReviewInput{Rating: 4})
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateReview_DefaultsAuthor(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	products.On("GetByID", ctx, "prod-001").Return(&domain.Product{ID: "prod-001"}, nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	products.On("RecomputeRatingFromReviews", ctx, "prod-001").
		Return(&domain.RatingAggregate{Rating: 3.0, ReviewCount: 1}, nil)

	review, err := svc.CreateReview(ctx, CreateReviewInput{ProductID: "prod-001", Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", review.Author)
}

func TestCreateReview_RecomputeFailure_ReviewStillStored(t *testing.T) {
	// The review insert and the aggregate recompute are separate
	// transactions; a failed recompute leaves the review in place.
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	products.On("GetByID", ctx, "prod-001").Return(&domain.Product{ID: "prod-001"}, nil)
	reviews.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	products.On("RecomputeRatingFromReviews", ctx, "prod-001").
		Return(nil, assert.AnError)

	review, err := svc.CreateReview(ctx, CreateReviewInput{
		ProductID: "prod-001",
		Author:    "Eleni T.",
		Rating:    2,
	})
	require.NoError(t, err)
	assert.NotNil(t, review)
}

func TestListReviews_ReturnsCreationOrder(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	stored := []domain.Review{
		{ID: "review-001", ProductID: "prod-001", Rating: 5},
		{ID: "review-002", ProductID: "prod-001", Rating: 3},
	}
	reviews.On("ListByProductID", ctx, "prod-001").Return(stored, nil)

	got, err := svc.ListReviews(ctx, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestListReviews_UnknownProduct_EmptyList(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	reviews.On("ListByProductID", ctx, "missing").Return([]domain.Review{}, nil)

	got, err := svc.ListReviews(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListReviews_MissingProductID_Rejected(t *testing.T) {
	ctx := context.Background()
	reviews := new(mockReviewRepository)
	products := new(mockProductRepository)
	svc := newTestReviewService(reviews, products)

	_, err := svc.ListReviews(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	reviews.AssertNotCalled(t, "ListByProductID", mock.Anything, mock.Anything)
}
