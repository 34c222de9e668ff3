package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/royalboe/commercia/internal/service"
	"github.com/royalboe/commercia/pkg/health"
	"github.com/royalboe/commercia/pkg/middleware"
)

// Services bundles the service dependencies of the router.
type Services struct {
	Categories *service.CategoryService
	Products   *service.ProductService
	Orders     *service.OrderService
	Carts      *service.CartService
	Reviews    *service.ReviewService
	Wishlists  *service.WishlistService
	Users      *service.UserService
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, serviceName string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.Identity())
	r.Use(middleware.RequestLogger(logger))

	// Operational endpoints
	r.Get("/health/live", healthHandler.Liveness())
	r.Get("/health/ready", healthHandler.Readiness())
	r.Handle("/metrics", promhttp.Handler())

	categoryHandler := NewCategoryHandler(svcs.Categories, logger)
	productHandler := NewProductHandler(svcs.Products, logger)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	cartHandler := NewCartHandler(svcs.Carts, logger)
	reviewHandler := NewReviewHandler(svcs.Reviews, svcs.Products, logger)
	wishlistHandler := NewWishlistHandler(svcs.Wishlists, logger)
	userHandler := NewUserHandler(svcs.Users, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Post("/", categoryHandler.CreateCategory)
			r.Get("/{slug}", categoryHandler.GetCategory)
			r.Put("/{slug}", categoryHandler.UpdateCategory)
			r.Delete("/{slug}", categoryHandler.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Post("/", productHandler.CreateProduct)
			r.Get("/{slug}", productHandler.GetProduct)
			r.Put("/{slug}", productHandler.UpdateProduct)
			r.Delete("/{slug}", productHandler.DeleteProduct)

			r.Get("/{slug}/reviews", reviewHandler.ListReviews)
			r.Post("/{slug}/reviews", reviewHandler.CreateReview)
			r.Get("/{slug}/rating", reviewHandler.GetRating)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Put("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Delete("/{id}", orderHandler.DeleteOrder)
			r.Patch("/{id}/status", orderHandler.UpdateOrderStatus)
			r.Put("/{id}/items", orderHandler.ReplaceOrderItems)
			r.Delete("/{id}/items/{itemID}", orderHandler.DeleteOrderItem)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemID}", cartHandler.SetItemQuantity)
			r.Delete("/items/{itemID}", cartHandler.RemoveItem)
			r.Post("/merge", cartHandler.MergeCart)
		})

		r.Route("/wishlists", func(r chi.Router) {
			r.Get("/", wishlistHandler.ListWishlists)
			r.Get("/me", wishlistHandler.GetWishlist)
			r.Post("/toggle", wishlistHandler.ToggleProduct)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})
	})

	return r
}
