package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akanakis/AgroMarket/internal/service"
	"github.com/akanakis/AgroMarket/pkg/httputil"
	"github.com/akanakis/AgroMarket/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Author    string `json:"author"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment"`
}

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
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

	review, err := h.service.CreateReview(r.Context(), service.CreateReviewInput{
		ProductID: req.ProductID,
		Author:    req.Author,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// ListProductReviews handles GET /api/v1/reviews/product/{productId}
func (h *ReviewHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	reviews, err := h.service.ListReviews(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}
