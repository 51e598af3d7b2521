package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplane/storefront/internal/auth"
	"github.com/shoplane/storefront/internal/service"
	"github.com/shoplane/storefront/pkg/health"
	"github.com/shoplane/storefront/pkg/middleware"
)

// Services bundles the application services the router exposes.
type Services struct {
	Catalog *service.CatalogService
	Reviews *service.ReviewService
	Carts   *service.CartService
	Orders  *service.OrderService
	Payment *service.PaymentService
	Users   *service.UserService
	Admin   *service.AdminService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	services Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:  claims.UserID,
			Name:    claims.Name,
			Email:   claims.Email,
			IsAdmin: claims.IsAdmin,
		}, nil
	}
	authed := middleware.Auth(tokenValidator)

	productHandler := NewProductHandler(services.Catalog, logger)
	reviewHandler := NewReviewHandler(services.Reviews, logger)
	cartHandler := NewCartHandler(services.Carts, logger)
	orderHandler := NewOrderHandler(services.Orders, logger)
	paymentHandler := NewPaymentHandler(services.Payment, logger)
	userHandler := NewUserHandler(services.Users, logger)
	adminHandler := NewAdminHandler(services.Admin, services.Users, services.Orders, logger)

	// Provider webhook. Unauthenticated: trust comes from the payload
	// signature, verified before anything else happens.
	r.Post("/api/v1/webhooks/payment", paymentHandler.Webhook)

	// Account endpoints
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/me", userHandler.Profile)
		})
	})

	// Catalog and review endpoints
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public reads
		r.Get("/", productHandler.ListProducts)
		r.Get("/categories", productHandler.ListCategories)
		r.Get("/top", productHandler.TopRated)
		r.Get("/slug/{slug}", productHandler.GetProductBySlug)
		r.Get("/{id}", productHandler.GetProduct)

		// Review writes (auth required)
		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Post("/{id}/reviews", reviewHandler.AddReview)
			r.Delete("/{id}/reviews/{reviewID}", reviewHandler.DeleteReview)
			r.Post("/{id}/reviews/{reviewID}/reactions", reviewHandler.ToggleReaction)
		})

		// Catalog management (admin only)
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Use(middleware.RequireAdmin)

			r.Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
			r.Post("/{id}/reviews/{reviewID}/reply", reviewHandler.ReplyToReview)
		})
	})

	// Cart endpoints (auth required)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authed)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Delete("/items/{productID}", cartHandler.RemoveItem)
	})

	// Order and payment endpoints (auth required)
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authed)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.ListMyOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Post("/{id}/checkout", paymentHandler.CreateCheckout)
		r.Put("/{id}/pay", paymentHandler.ConfirmPayment)
	})

	// Admin dashboard endpoints
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authed)
		r.Use(middleware.RequireAdmin)

		r.Get("/summary", adminHandler.Summary)
		r.Get("/users", adminHandler.ListUsers)
		r.Get("/orders", adminHandler.ListOrders)
	})

	return r
}
