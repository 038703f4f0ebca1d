package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository"
	apperrors "github.com/akanakis/AgroMarket/pkg/errors"
)

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// CreateProductInput holds the parameters for creating a product listing.
type CreateProductInput struct {
	Name           string  `json:"name" validate:"required"`
	Description    string  `json:"description"`
	Price          float64 `json:"price" validate:"gte=0"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	Location       string  `json:"location"`
	SellerID       string  `json:"seller_id"`
	SellerName     string  `json:"seller_name"`
	ImageURL       string  `json:"image_url"`
	Organic        bool    `json:"organic"`
	HarvestDate    string  `json:"harvest_date"`
	ExpirationDate *string `json:"expiration_date"`
	MaxQuantity    int     `json:"max_quantity"`
}

// CreateProduct creates a new product listing. New listings start with a zero
// rating aggregate; only order ratings and reviews move it.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	product := &domain.Product{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		Unit:           input.Unit,
		Category:       input.Category,
		Location:       input.Location,
		SellerID:       input.SellerID,
		SellerName:     input.SellerName,
		ImageURL:       input.ImageURL,
		Organic:        input.Organic,
		HarvestDate:    input.HarvestDate,
		ExpirationDate: input.ExpirationDate,
		MaxQuantity:    input.MaxQuantity,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
		slog.String("seller_id", product.SellerID),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProductInput holds the updatable descriptive fields of a product.
// The rating aggregate is deliberately absent: only the rating paths touch it.
type UpdateProductInput struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Price          *float64 `json:"price"`
	Unit           *string  `json:"unit"`
	Category       *string  `json:"category"`
	Location       *string  `json:"location"`
	ImageURL       *string  `json:"image_url"`
	Organic        *bool    `json:"organic"`
	HarvestDate    *string  `json:"harvest_date"`
	ExpirationDate *string  `json:"expiration_date"`
	MaxQuantity    *int     `json:"max_quantity"`
}

// UpdateProduct applies partial updates to a product's descriptive fields.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Location != nil {
		product.Location = *input.Location
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Organic != nil {
		product.Organic = *input.Organic
	}
	if input.HarvestDate != nil {
		product.HarvestDate = *input.HarvestDate
	}
	if input.ExpirationDate != nil {
		product.ExpirationDate = input.ExpirationDate
	}
	if input.MaxQuantity != nil {
		product.MaxQuantity = *input.MaxQuantity
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product listing and, via cascade, its reviews.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}
