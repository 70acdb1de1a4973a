package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/flash-sale-service/internal/config"
	"github.com/fairyhunter13/flash-sale-service/internal/handler"
	"github.com/fairyhunter13/flash-sale-service/internal/repository"
	"github.com/fairyhunter13/flash-sale-service/internal/service"
	appvalidator "github.com/fairyhunter13/flash-sale-service/internal/validator"
	"github.com/fairyhunter13/flash-sale-service/pkg/redisstore"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Connect to Redis with retry
	client, err := redisstore.Connect(ctx, cfg.Redis.URL, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Flash Sale Service",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	// Rate limit the sale API per client IP
	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"reason":  "rate_limited",
				"message": "Too many requests, please try again later",
			})
		},
	}))

	// Initialize validator
	validate := appvalidator.New()

	// Initialize sale components (layered architecture)
	inventoryRepo := repository.NewInventoryRepository(client)
	ledgerRepo := repository.NewLedgerRepository(client)
	purchaseRepo := repository.NewPurchaseRepository(client)
	saleService := service.NewSaleService(service.SaleConfig{
		StartTime:    cfg.Sale.StartTime,
		EndTime:      cfg.Sale.EndTime,
		TotalStock:   cfg.Sale.TotalStock,
		ProductName:  cfg.Sale.ProductName,
		ProductPrice: cfg.Sale.ProductPrice,
	}, inventoryRepo, ledgerRepo, purchaseRepo)
	purchaseHandler := handler.NewPurchaseHandler(saleService, validate)
	saleHandler := handler.NewSaleHandler(saleService)

	// Health and metrics endpoints
	healthHandler := handler.NewHealthHandler(client)
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Sale routes
	api := app.Group("/api/sale")
	api.Get("/status", saleHandler.Status)
	api.Post("/purchase", purchaseHandler.Purchase)
	api.Get("/purchase/:userId", purchaseHandler.UserStatus)
	api.Post("/reset", saleHandler.Reset)

	// Seed the stock counter unless a previous run already did
	created, err := saleService.Initialize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sale stock")
	}
	if created {
		log.Info().Int("total_stock", cfg.Sale.TotalStock).Msg("sale stock initialized")
	} else {
		log.Info().Msg("sale stock already initialized, keeping existing counter")
	}

	log.Info().
		Time("starts_at", cfg.Sale.StartTime).
		Time("ends_at", cfg.Sale.EndTime).
		Int("total_stock", cfg.Sale.TotalStock).
		Str("product", cfg.Sale.ProductName).
		Msg("sale configured")

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("starting server")
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close the Redis client AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing redis connection...")
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("error closing redis connection")
	}
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
