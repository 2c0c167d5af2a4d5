package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/shop-backend/internal/auth"
	"github.com/Lixing-Zhang/shop-backend/internal/config"
	"github.com/Lixing-Zhang/shop-backend/internal/database"
	"github.com/Lixing-Zhang/shop-backend/internal/handlers"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
	"github.com/Lixing-Zhang/shop-backend/internal/server"
	"github.com/Lixing-Zhang/shop-backend/internal/service"
	"github.com/Lixing-Zhang/shop-backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// storage bundles the repositories for whichever driver is configured
type storage struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	pinger   handlers.Pinger
	close    func(ctx context.Context) error
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting shop api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"db_driver", cfg.Database.Driver,
		"log_level", cfg.LogLevel,
	)

	store, err := openStorage(context.Background(), cfg.Database, log)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	productService := service.NewProductService(store.products)
	orderService := service.NewOrderService(store.orders, store.products)
	userService := service.NewUserService(store.users, tokens)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := server.NewRouter(server.Deps{
		Logger:      log,
		Products:    productService,
		Orders:      orderService,
		Users:       userService,
		Tokens:      tokens,
		DB:          store.pinger,
		Registry:    registry,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	if err := store.close(ctx); err != nil {
		log.Error("failed to close storage", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return &storage{
			products: repository.NewInMemoryProductRepository(),
			orders:   repository.NewInMemoryOrderRepository(),
			users:    repository.NewInMemoryUserRepository(),
			close:    func(context.Context) error { return nil },
		}, nil
	}

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	users := repository.NewMongoUserRepository(db.Database())
	indexCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
	defer cancel()
	if err := users.EnsureIndexes(indexCtx); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to create user indexes: %w", err)
	}

	return &storage{
		products: repository.NewMongoProductRepository(db.Database()),
		orders:   repository.NewMongoOrderRepository(db.Database()),
		users:    users,
		pinger:   db,
		close:    db.Close,
	}, nil
}
