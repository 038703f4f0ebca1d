package repository

import (
	"context"

	"github.com/akanakis/AgroMarket/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Category    *string
	OrganicOnly bool
	Page        int
	PerPage     int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	CustomerID *string
	Status     *string
	Page       int
	PerPage    int
}

// UserFilter defines pagination for listing users.
type UserFilter struct {
	Page    int
	PerPage int
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user profile.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// List returns users matching the filter along with the total count.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
}

// ProductRepository defines the interface for product persistence operations,
// including the two rating-aggregate update paths. Both aggregate updates run
// in their own transaction and lock the product row, so each path is atomic
// with respect to itself; they deliberately do not reconcile with each other.
type ProductRepository interface {
	// Create inserts a new product listing.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update persists changed descriptive fields of a product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and, via cascade, its reviews.
	Delete(ctx context.Context, id string) error

	// ApplyOrderRating folds a single order rating into the product's stored
	// aggregate without consulting the review table.
	ApplyOrderRating(ctx context.Context, productID string, rating int) (*domain.RatingAggregate, error)

	// RecomputeRatingFromReviews rederives the product's aggregate from its
	// full review set, discarding any order-rating contributions.
	RecomputeRatingFromReviews(ctx context.Context, productID string) (*domain.RatingAggregate, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items into the store atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// SetRating records the customer's satisfaction rating on the order header.
	SetRating(ctx context.Context, id string, rating int) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new product review.
	Create(ctx context.Context, review *domain.Review) error

	// ListByProductID returns all reviews for a product in creation order.
	ListByProductID(ctx context.Context, productID string) ([]domain.Review, error)
}
