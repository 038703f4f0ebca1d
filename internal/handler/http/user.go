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

// UserHandler handles HTTP requests for user profile endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateUserRequest is the JSON request body for creating a user profile.
type CreateUserRequest struct {
	Name           string  `json:"name" validate:"required"`
	Role           string  `json:"role" validate:"required,oneof=BUYER PRODUCER"`
	Location       string  `json:"location"`
	FarmName       *string `json:"farm_name"`
	Certifications *string `json:"certifications"`
	Preferences    *string `json:"preferences"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateUserRequest
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

	user, err := h.service.CreateUser(r.Context(), service.CreateUserInput{
		Name:           req.Name,
		Role:           req.Role,
		Location:       req.Location,
		FarmName:       req.FarmName,
		Certifications: req.Certifications,
		Preferences:    req.Preferences,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: user})
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	users, total, err := h.service.ListUsers(r.Context(), repository.UserFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(users, total, params.Page, params.PerPage))
}

// GetUser handles GET /api/v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}
