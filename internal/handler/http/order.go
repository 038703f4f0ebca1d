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

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateOrderItemRequest is the JSON request body for an order line item.
type CreateOrderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// CreateOrderRequest is the JSON request body for creating an order. The
// total comes from the storefront's cart, not from summing the line items;
// status is optional and falls back to Pending.
type CreateOrderRequest struct {
	CustomerID   *string                  `json:"customer_id"`
	CustomerName string                   `json:"customer_name"`
	Total        float64                  `json:"total" validate:"gte=0"`
	Status       string                   `json:"status"`
	Items        []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// RateOrderRequest is the JSON request body for rating an order.
type RateOrderRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

// --- Handlers ---

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateOrderRequest
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

	items := make([]service.CreateOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CreateOrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order, err := h.service.CreateOrder(r.Context(), service.CreateOrderInput{
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Total:        req.Total,
		Status:       req.Status,
		Items:        items,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	filter := repository.OrderFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("customer_id"); v != "" {
		filter.CustomerID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}

	orders, total, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// RateOrder handles PUT /api/v1/orders/{id}/rating
func (h *OrderHandler) RateOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	result, err := h.service.RateOrder(r.Context(), id, req.Rating)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
