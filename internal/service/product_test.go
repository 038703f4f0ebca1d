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

func newTestProductService(products *mockProductRepository) *ProductService {
	return NewProductService(products, slog.Default())
}

func TestCreateProduct_Success_StartsWithZeroAggregate(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:       "Kalamata PDO Olive Oil",
		Price:      12.50,
		Unit:       "liter",
		Category:   "Oil & Olives",
		SellerID:   "user-001",
		SellerName: "Papadopoulos Estate",
		Organic:    true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Zero(t, product.Rating)
	assert.Zero(t, product.ReviewCount)
	products.AssertExpectations(t)
}

func TestCreateProduct_MissingName_Rejected(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	_, err := svc.CreateProduct(ctx, CreateProductInput{Price: 5.0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_NegativePrice_Rejected(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Feta PDO", Price: -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateProduct_PartialUpdate_LeavesAggregateAlone(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	existing := &domain.Product{
		ID:          "prod-001",
		Name:        "Kalamata PDO Olive Oil",
		Price:       12.50,
		Rating:      4.8,
		ReviewCount: 124,
	}
	products.On("GetByID", ctx, "prod-001").Return(existing, nil)
	products.On("Update", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)

	newPrice := 13.90
	updated, err := svc.UpdateProduct(ctx, "prod-001", UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)

	assert.InDelta(t, 13.90, updated.Price, 1e-9)
	assert.Equal(t, "Kalamata PDO Olive Oil", updated.Name)
	// Descriptive updates never move the rating aggregate.
	assert.InDelta(t, 4.8, updated.Rating, 1e-9)
	assert.Equal(t, 124, updated.ReviewCount)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	products.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	_, err := svc.UpdateProduct(ctx, "missing", UpdateProductInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduct_EmptyName_Rejected(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	products.On("GetByID", ctx, "prod-001").Return(&domain.Product{ID: "prod-001", Name: "Honey"}, nil)

	empty := ""
	_, err := svc.UpdateProduct(ctx, "prod-001", UpdateProductInput{Name: &empty})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	products.On("Delete", ctx, "missing").Return(apperrors.NotFound("product", "missing"))

	err := svc.DeleteProduct(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListProducts_CapsPerPage(t *testing.T) {
	ctx := context.Background()
	products := new(mockProductRepository)
	svc := newTestProductService(products)

	products.On("List", ctx, repository.ProductFilter{Page: 1, PerPage: 100}).
		Return([]domain.Product{}, 0, nil)

	_, _, err := svc.ListProducts(ctx, repository.ProductFilter{Page: 1, PerPage: 500})
	require.NoError(t, err)
	products.AssertExpectations(t)
}
