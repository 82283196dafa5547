package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/storefront/internal/config"
	"github.com/Lixing-Zhang/storefront/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes is everything the route table serves
type Routes struct {
	Health   *HealthHandler
	Products *ProductHandler
	Carts    *CartHandler
	Catalog  *CatalogHandler
	Pages    *PageHandler

	Session config.SessionConfig
	CORS    config.CORSConfig
	Logger  *slog.Logger
}

// NewRouter builds the storefront's route table and middleware chain
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(rt.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))

	// Register health check endpoint
	r.Get("/health", rt.Health.ServeHTTP)

	// Built-in catalog backend
	r.Get("/products/", rt.Products.ListProducts)
	r.Get("/products/{productId}", rt.Products.GetProduct)
	r.Get("/recommendations/{userId}", rt.Products.GetRecommendations)

	// Storefront pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(rt.Session))

		r.Get("/", rt.Pages.Index)
		r.Get("/cart", rt.Pages.Cart)
		r.Post("/cart/items", rt.Pages.AddItem)
		r.Post("/cart/items/{index}/remove", rt.Pages.RemoveItem)
		r.Post("/cart/clear", rt.Pages.Clear)
		r.Post("/cart/checkout", rt.Pages.Checkout)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: rt.CORS.AllowCredentials,
			MaxAge:           300,
		}))
		r.Use(middleware.Session(rt.Session))

		r.Get("/catalog", rt.Catalog.GetCatalog)

		r.Get("/cart", rt.Carts.GetCart)
		r.Delete("/cart", rt.Carts.ClearCart)
		r.Post("/cart/items", rt.Carts.AddItem)
		r.Delete("/cart/items/{index}", rt.Carts.RemoveItem)
		r.Post("/cart/checkout", rt.Carts.Checkout)
	})

	return r
}
