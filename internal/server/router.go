package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/shop-backend/internal/handlers"
	"github.com/Lixing-Zhang/shop-backend/internal/middleware"
	"github.com/Lixing-Zhang/shop-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP layer needs from the rest of the application
type Deps struct {
	Logger      *slog.Logger
	Products    *service.ProductService
	Orders      *service.OrderService
	Users       *service.UserService
	Tokens      middleware.TokenVerifier
	DB          handlers.Pinger // nil when running on the in-memory store
	Registry    *prometheus.Registry
	CORSOrigins []string
}

// NewRouter builds the application's route tree
func NewRouter(d Deps) http.Handler {
	healthHandler := handlers.NewHealthHandler(d.Logger, d.DB)
	productHandler := handlers.NewProductHandler(d.Products, d.Logger)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Logger)
	userHandler := handlers.NewUserHandler(d.Users, d.Logger)
	protect := middleware.Protect(d.Tokens, d.Users, d.Logger)

	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler)
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", handlers.Root)
	r.Get("/health", healthHandler.ServeHTTP)
	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", productHandler.Routes)

		r.Route("/orders", func(r chi.Router) {
			r.Use(protect)
			orderHandler.Routes(r)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(protect).Get("/profile", userHandler.Profile)
		})
	})

	return r
}
