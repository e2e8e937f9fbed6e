package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/mhuebner/climate-forecasting/internal/api/http"
	"github.com/mhuebner/climate-forecasting/internal/config"
	"github.com/mhuebner/climate-forecasting/internal/dataset"
	"github.com/mhuebner/climate-forecasting/internal/forecast"
	"github.com/mhuebner/climate-forecasting/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for dataset downloads.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Optional remote source; otherwise the dataset comes from disk.
	var remote *dataset.RemoteSource
	if cfg.DatasetURL != "" {
		remote = dataset.NewRemoteSource(httpClient, cfg.DatasetURL)
	}

	ds, err := loadDataset(cfg, remote)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded dataset with %d records", len(ds))

	// Core manager owning one model per city.
	mgr, err := forecast.NewManager(ds, cfg.Cities, cfg.Window)
	if err != nil {
		log.Fatalf("failed to create manager: %v", err)
	}

	start := time.Now()
	if err := mgr.Fit(); err != nil {
		log.Fatalf("failed to fit models: %v", err)
	}
	log.Printf("fitted %d city models in %s", len(cfg.Cities), time.Since(start).Round(time.Millisecond))

	// Scheduler that periodically reloads and refits.
	sched := scheduler.New(cfg.RefitInterval, func(ctx context.Context) error {
		if remote != nil {
			fresh, err := remote.Fetch(ctx)
			if err != nil {
				return err
			}
			mgr.Reload(fresh)
		}
		return mgr.Fit()
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "climate-forecasting",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "climate-forecasting",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, mgr)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func loadDataset(cfg *config.AppConfig, remote *dataset.RemoteSource) (dataset.Dataset, error) {
	if remote != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return remote.Fetch(ctx)
	}
	return dataset.LoadCSV(cfg.DatasetPath)
}
