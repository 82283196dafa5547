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

	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/catalog"
	"github.com/Lixing-Zhang/storefront/internal/config"
	"github.com/Lixing-Zhang/storefront/internal/handlers"
	"github.com/Lixing-Zhang/storefront/internal/repository"
	"github.com/Lixing-Zhang/storefront/internal/service"
	"github.com/Lixing-Zhang/storefront/internal/storage"
	"github.com/Lixing-Zhang/storefront/internal/views"
	"github.com/Lixing-Zhang/storefront/pkg/logger"
)

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

	log.Info("starting storefront server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"store_driver", cfg.Store.Driver,
		"catalog_base_url", cfg.Catalog.BaseURL,
		"session_idle_timeout", cfg.Session.IdleTimeout,
		"session_sweep_interval", cfg.Session.SweepInterval,
	)

	ctx := context.Background()

	// Cart persistence; nil for the "none" driver
	kv, err := storage.Open(ctx, cfg.Store, log)
	if err != nil {
		log.Error("failed to open cart store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	sessions := cart.NewManager(kv, log)

	// Catalog
	fallback := repository.NewFallbackCatalog()
	fetchTimeout := time.Duration(cfg.Catalog.FetchTimeoutMS) * time.Millisecond
	source := catalog.NewHTTPSource(cfg.Catalog.BaseURL, fetchTimeout)

	var recs catalog.RecommendationSource
	if cfg.Catalog.LiveRecommendations {
		recs = source
	}
	loader := catalog.NewLoader(source, recs, fallback, fetchTimeout, log)

	renderer, err := views.NewRenderer()
	if err != nil {
		log.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Initialize services
	productService := service.NewProductService(fallback)
	cartService := service.NewCartService(sessions, log)
	// No purchase flow exists yet; checkout reports not implemented
	checkoutService := service.NewCheckoutService(sessions, nil, log)

	// Initialize handlers
	router := handlers.NewRouter(handlers.Routes{
		Health:   handlers.NewHealthHandler(kv, cfg.Store.Driver, log),
		Products: handlers.NewProductHandler(productService, log),
		Carts:    handlers.NewCartHandler(cartService, checkoutService, log),
		Catalog:  handlers.NewCatalogHandler(loader, cfg.Catalog.UserID, log),
		Pages:    handlers.NewPageHandler(cartService, checkoutService, loader, renderer, cfg.Catalog.UserID, log),
		Session:  cfg.Session,
		CORS:     cfg.CORS,
		Logger:   log,
	})

	// Tear down carts left idle; stopped before the final Close
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sessions.RunSweeper(sweepCtx,
			time.Duration(cfg.Session.SweepInterval)*time.Second,
			time.Duration(cfg.Session.IdleTimeout)*time.Second,
		)
	}()

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

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	stopSweeper()
	<-sweeperDone

	// Tear down every live session before closing the backend
	if err := sessions.Close(shutdownCtx); err != nil {
		log.Error("failed to persist carts on shutdown", "error", err)
	}
	if kv != nil {
		if err := kv.Close(); err != nil {
			log.Error("failed to close cart store", "error", err)
		}
	}

	log.Info("server stopped gracefully")
}
