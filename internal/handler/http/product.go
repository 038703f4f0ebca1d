package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akanakis/AgroMarket/internal/repository"
	"github.com/akanakis/AgroMarket/internal/service"
	"github.com/akanakis/AgroMarket/pkg/httputil"
	"github.com/akanakis/AgroMarket/pkg/pagination"
	"github.com/akanakis/AgroMarket/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	Description    string  `json:"description"`
	Price          float64 `json:"price" validate:"gte=0"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	Location       string  `json:"location"`
	SellerID       string  `json:"seller_id"`
	SellerName     string  `json:"seller_name"`
	ImageURL       string  `json:"image_url" validate:"omitempty,url"`
	Organic        bool    `json:"organic"`
	HarvestDate    string  `json:"harvest_date"`
	ExpirationDate *string `json:"expiration_date"`
	MaxQuantity    int     `json:"max_quantity" validate:"gte=0"`
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), service.CreateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Unit:           req.Unit,
		Category:       req.Category,
		Location:       req.Location,
		SellerID:       req.SellerID,
		SellerName:     req.SellerName,
		ImageURL:       req.ImageURL,
		Organic:        req.Organic,
		HarvestDate:    req.HarvestDate,
		ExpirationDate: req.ExpirationDate,
		MaxQuantity:    req.MaxQuantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	filter := repository.ProductFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}
	if v := r.URL.Query().Get("organic_only"); v == "true" || v == "1" {
		filter.OrganicOnly = true
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
