package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/andeanlabs/pagoflow/handler"
	"github.com/andeanlabs/pagoflow/infra/config"
	"github.com/andeanlabs/pagoflow/infra/logger"
	"github.com/andeanlabs/pagoflow/infra/metrics"
	"github.com/andeanlabs/pagoflow/infra/opensearch"
	"github.com/andeanlabs/pagoflow/provider"
	"github.com/andeanlabs/pagoflow/router"

	// Import for side-effect registration
	_ "github.com/andeanlabs/pagoflow/provider/mercadopago"
	_ "github.com/andeanlabs/pagoflow/provider/wompi"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg := config.Gateway()
	_ = config.App()

	osClient, err := opensearch.NewClient(opensearch.Config{
		URL:      cfg.OpenSearchURL,
		Username: cfg.OpenSearchUser,
		Password: cfg.OpenSearchPass,
		Enabled:  cfg.EnableLogging,
	})
	if err != nil {
		log.Printf("Failed to initialize OpenSearch client: %v", err)
		log.Println("Continuing without OpenSearch logging...")
		osClient, _ = opensearch.NewClient(opensearch.Config{})
	}
	logger.InitGlobalLogger(osClient, cfg.Environment)

	var events provider.EventLogger
	if osClient.IsEnabled() {
		events = provider.NewOpenSearchEventLogger(osClient)
	}

	// An explicit database path makes simulated payments survive restarts;
	// without one they live in memory.
	var store provider.SimulatedStore
	if cfg.Simulated && cfg.SimulatedDBPath != "" {
		sqliteStore, err := provider.NewSQLiteSimulatedStore(cfg.SimulatedDBPath)
		if err != nil {
			logger.Fatal("Failed to open simulated payment store", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	paymentService, err := provider.NewPaymentService(provider.Config{
		Environment:   cfg.Environment,
		AccessToken:   cfg.MercadoPagoAccessToken,
		PublicKey:     cfg.WompiPublicKey,
		PrivateKey:    cfg.WompiPrivateKey,
		ClientBaseURL: cfg.ClientBaseURL,
		APIBaseURL:    cfg.APIBaseURL,
		Simulated:     cfg.Simulated,
		Store:         store,
	}, nil, events)
	if err != nil {
		logger.Fatal("Failed to initialize payment service", err)
	}

	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length", "Access-Control-Allow-Origin"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	healthHandler := handler.NewHealthHandler(paymentService.Simulated)
	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler())

	router.Routes(r, paymentService)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", logger.LogContext{
			Fields: map[string]any{
				"port":      cfg.Port,
				"simulated": cfg.Simulated,
			},
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped")
}
