package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akanakis/AgroMarket/internal/service"
	"github.com/akanakis/AgroMarket/pkg/health"
	"github.com/akanakis/AgroMarket/pkg/middleware"
)

const serviceName = "agromarket-api"

// RouterConfig carries the handler dependencies and the knobs the
// global middleware chain needs.
type RouterConfig struct {
	Users    *service.UserService
	Products *service.ProductService
	Orders   *service.OrderService
	Reviews  *service.ReviewService

	Health *health.Handler
	Logger *slog.Logger

	CORS           middleware.CORSConfig
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all marketplace routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	userHandler := NewUserHandler(cfg.Users, cfg.Logger)
	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Orders, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Logger)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", userHandler.CreateUser)
		r.Get("/", userHandler.ListUsers)
		r.Get("/{id}", userHandler.GetUser)
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", productHandler.CreateProduct)
		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Put("/{id}/rating", orderHandler.RateOrder)
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", reviewHandler.CreateReview)
		r.Get("/product/{productId}", reviewHandler.ListProductReviews)
	})

	return r
}
